package traffic

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// base de fechas seriales de hojas de cálculo (incluye el desfase del 1900 bisiesto)
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// MonthKey normaliza una fecha a "YYYY-MM". Acepta un serial numérico o un
// string DD/MM/YYYY (o con el serial como texto); cualquier otra cosa devuelve ("", false).
func MonthKey(v any) (string, bool) {
	switch d := v.(type) {
	case float64:
		return fromSerial(d)
	case float32:
		return fromSerial(float64(d))
	case int:
		return fromSerial(float64(d))
	case int64:
		return fromSerial(float64(d))
	case string:
		// un serial que llegó como texto, típico de CSV exportados desde una hoja
		if n, err := strconv.ParseFloat(strings.TrimSpace(d), 64); err == nil {
			return fromSerial(n)
		}
		f := strings.Fields(d)
		if len(f) == 0 {
			return "", false
		}
		// "2/1/2006" acepta día y mes con o sin cero; se ignora la hora si viene
		t, err := time.Parse("2/1/2006", f[0])
		if err != nil {
			return "", false
		}
		return t.Format("2006-01"), true
	}
	return "", false
}

func fromSerial(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 2958465 { // 9999-12-31
		return "", false
	}
	days := int(math.Floor(f))
	return serialEpoch.AddDate(0, 0, days).Format("2006-01"), true
}
