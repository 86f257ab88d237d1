package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kazdan-gif/blog/internal/ingest"
	"github.com/kazdan-gif/blog/internal/metrics"
	"github.com/kazdan-gif/blog/internal/utils"
)

const uploadField = "file"

type uploadHandler struct {
	log      *slog.Logger
	etl      *ingest.ETL
	mSvc     *metrics.Service
	inst     *utils.Instruments
	maxBytes int64
}

func NewRouter(log *slog.Logger, etl *ingest.ETL, mSvc *metrics.Service, inst *utils.Instruments, maxUploadBytes int64) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(inst.Middleware)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", inst.Handler())

	up := &uploadHandler{log: log, etl: etl, mSvc: mSvc, inst: inst, maxBytes: maxUploadBytes}
	mux.Post("/api/traffic/upload", up.ServeHTTP)

	return mux
}

func (h *uploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("rid", utils.RID(r.Context())))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, fh, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, log, "too_large", http.StatusRequestEntityTooLarge,
				"file is larger than the upload limit", err)
			return
		}
		h.fail(w, log, "bad_request", http.StatusBadRequest, "a file is required in the \"file\" field", err)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	start := time.Now()
	batch, err := h.etl.Run(fh.Filename, file)
	if err != nil {
		h.fail(w, log, outcome(err), http.StatusBadRequest, err.Error(), err)
		return
	}
	rep := h.mSvc.Build(batch.Records)
	rep.RowsTotal = batch.Total
	rep.Warning = batch.Warning
	h.inst.BuildDuration.Observe(time.Since(start).Seconds())
	h.inst.RowsAnalyzed.Observe(float64(rep.RowsAnalyzed))
	h.inst.Uploads.WithLabelValues("ok").Inc()

	log.Info("report built",
		slog.String("file", fh.Filename),
		slog.Int("orders", rep.Summary.TotalOrders),
		slog.Bool("truncated", rep.Warning != ""))
	writeJSON(w, http.StatusOK, rep)
}

func (h *uploadHandler) fail(w http.ResponseWriter, log *slog.Logger, kind string, code int, msg string, err error) {
	h.inst.Uploads.WithLabelValues(kind).Inc()
	log.Warn("upload rejected", slog.String("outcome", kind), slog.String("err", err.Error()))
	writeJSON(w, code, map[string]string{"error": msg})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ingest.ErrFileTooComplex):
		return "too_complex"
	case errors.Is(err, ingest.ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, ingest.ErrMissingColumns):
		return "missing_columns"
	}
	return "error"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
