package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/controller"
	"github.com/scriptgen-ra/scriptgen/middleware"
)

func SetAPIRouter(server *gin.Engine, api *controller.API) {
	apiRouter := server.Group("/api")
	apiRouter.Use(gzip.Gzip(gzip.DefaultCompression))
	apiRouter.Use(middleware.GlobalAPIRateLimit())
	{
		apiRouter.GET("/health", controller.Health)
		apiRouter.GET("/status", controller.GetStatus)

		apiRouter.POST("/test-testrail-connection", api.TestTestRailConnection)
		apiRouter.POST("/test-azure-openai", api.TestAzureOpenAI)
		apiRouter.POST("/preview-excel", api.PreviewExcel)
		apiRouter.POST("/preview-testrail", api.PreviewTestRail)

		apiRouter.GET("/download/:filename", api.Download)
		apiRouter.GET("/download-combined/:filename", api.DownloadCombined)
		apiRouter.GET("/list-generated-files", api.ListGeneratedFiles)

		authRouter := apiRouter.Group("/auth")
		{
			authRouter.POST("/register", middleware.CriticalRateLimit(), controller.Register)
			authRouter.POST("/login", middleware.CriticalRateLimit(), controller.Login)
			authRouter.POST("/logout", controller.Logout)
			authRouter.GET("/me", middleware.UserAuth(), controller.GetSelf)
			authRouter.PUT("/profile", middleware.UserAuth(), controller.UpdateProfile)
		}

		apiRouter.POST("/upload-files", middleware.UserAuth(), middleware.UploadRateLimit(), api.UploadFiles)
		apiRouter.POST("/generate-script", middleware.UserAuth(), middleware.CriticalRateLimit(), api.GenerateScript)
		apiRouter.GET("/generations", middleware.UserAuth(), api.ListGenerations)
	}

	if config.EnablePrometheusMetrics {
		server.GET("/metrics", middleware.AdminAuth(), gin.WrapH(promhttp.Handler()))
	}
}
