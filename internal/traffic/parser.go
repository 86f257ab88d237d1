package traffic

import (
	"regexp"
	"strings"

	"github.com/kazdan-gif/blog/internal/models"
)

type UTM struct {
	Source   string
	Medium   string
	Campaign string
}

var emailCampaignRe = regexp.MustCompile(`(?i)campaign[_-]?(\d+)`)

// ParseSource lee un string tipo "utmcsr=google|utmcmd=cpc|utmccn=spring".
// Lo que falte o venga mal formado queda en "(not set)".
func ParseSource(raw string) UTM {
	u := UTM{Source: models.NotSet, Medium: models.NotSet, Campaign: models.NotSet}
	for _, pair := range strings.Split(raw, "|") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch norm(k) {
		case "utmcsr":
			u.Source = v
		case "utmcmd":
			u.Medium = v
		case "utmccn":
			u.Campaign = v
		}
	}
	return u
}

// EmailCampaignID devuelve "campaign_<n>" o "" si no hay match.
func EmailCampaignID(raw string) string {
	m := emailCampaignRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return "campaign_" + m[1]
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
