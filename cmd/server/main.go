package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kazdan-gif/blog/internal/config"
	"github.com/kazdan-gif/blog/internal/httpx"
	"github.com/kazdan-gif/blog/internal/ingest"
	"github.com/kazdan-gif/blog/internal/metrics"
	"github.com/kazdan-gif/blog/internal/utils"
)

func main() {
	cfg, dotenv := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if !dotenv {
		logger.Debug("no .env file found, using environment variables")
	}

	// montos como números en el JSON del reporte
	decimal.MarshalJSONWithoutQuotes = true

	etl := ingest.NewETL(logger, cfg)
	mSvc := metrics.NewService(logger)
	inst := utils.NewInstruments()

	r := httpx.NewRouter(logger, etl, mSvc, inst, cfg.MaxUploadBytes)

	// las subidas grandes necesitan más que el timeout general
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.UploadTimeout,
		WriteTimeout:      cfg.UploadTimeout,
		IdleTimeout:       cfg.HTTPTimeout,
	}

	logger.Info("starting server",
		slog.String("port", cfg.Port),
		slog.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		slog.Int("max_rows", cfg.MaxRows))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
