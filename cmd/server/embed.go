//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"urbannest/internal/config"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the form from the assets embedded at build time
func setupStaticFiles(router *gin.Engine, _ *config.ServerConfig, logger *slog.Logger) error {
	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		return errors.Wrap(err, "failed to get dist subdirectory")
	}

	logger.Info("using embedded form assets")
	serveForm(router, http.FS(distFS))
	return nil
}
