package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// serveForm mounts the single-page form at / and answers unknown routes with JSON
func serveForm(router *gin.Engine, files http.FileSystem) {
	router.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", files)
	})
	router.GET("/assets/*filepath", func(c *gin.Context) {
		c.FileFromFS("/assets"+c.Param("filepath"), files)
	})

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
