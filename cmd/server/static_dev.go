//go:build !embed
// +build !embed

package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"urbannest/internal/config"
)

// setupStaticFiles serves the form from disk so it can be edited without rebuilding
func setupStaticFiles(router *gin.Engine, cfg *config.ServerConfig, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.WebDir); err != nil {
		return errors.Wrapf(err, "form assets not found in %s (set WEB_DIR)", cfg.WebDir)
	}

	logger.Info("using local filesystem for form assets", "dir", cfg.WebDir)
	serveForm(router, http.Dir(cfg.WebDir))
	return nil
}
