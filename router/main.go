// Package router wires the HTTP surface: the JSON API and the static web
// frontend when a build is present.
package router

import (
	"net/http"
	"os"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"github.com/scriptgen-ra/scriptgen/controller"
)

const webBuildDir = "./web/build"

func SetRouter(server *gin.Engine, api *controller.API) {
	SetAPIRouter(server, api)
	setWebRouter(server)
}

// setWebRouter serves the frontend build when one exists. API-only
// deployments just get a JSON 404 for unknown paths.
func setWebRouter(server *gin.Engine) {
	if _, err := os.Stat(webBuildDir); err != nil {
		server.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "not found",
			})
		})
		return
	}

	server.Use(static.Serve("/", static.LocalFile(webBuildDir, false)))
	server.NoRoute(func(c *gin.Context) {
		c.File(webBuildDir + "/index.html")
	})
}
