package handler

import (
	"net/http"
	"sync"

	"github.com/wadjakorntonsri/research-links/pkg/app"
	"github.com/wadjakorntonsri/research-links/pkg/config"
	"github.com/wadjakorntonsri/research-links/pkg/logging"
	"go.uber.org/zap"
)

var (
	once    sync.Once
	mux     http.Handler
	initErr error
)

func setup() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		initErr = err
		return
	}

	// Serverless filesystems are ephemeral, so STORE_URL should be Redis or a remote libsql URL.
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", zap.Error(err))
		initErr = err
		return
	}
	mux = a.Router()
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	mux.ServeHTTP(w, r)
}
