package main

import (
	"encoding/base64"
	"os"
	"strconv"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/scriptgen-ra/scriptgen/common"
	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/logger"
	"github.com/scriptgen-ra/scriptgen/controller"
	"github.com/scriptgen-ra/scriptgen/middleware"
	"github.com/scriptgen-ra/scriptgen/model"
	"github.com/scriptgen-ra/scriptgen/router"
	"github.com/scriptgen-ra/scriptgen/storage"
)

func main() {
	common.Init()
	logger.SetupLogger()
	logger.Logger.Info("ScriptGen RA started", zap.String("version", common.Version))

	if os.Getenv("GIN_MODE") != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// The Azure OpenAI binding is mandatory; refuse to start without it.
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal("invalid configuration", zap.Error(err))
	}

	model.InitDB()
	if err = model.CreateRootAccountIfNeed(); err != nil {
		logger.Logger.Fatal("database init error", zap.Error(err))
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.Logger.Fatal("failed to close database", zap.Error(err))
		}
	}()

	if err = common.InitRedisClient(); err != nil {
		logger.Logger.Fatal("failed to initialize Redis", zap.Error(err))
	}

	store, err := storage.New(cfg)
	if err != nil {
		logger.Logger.Fatal("failed to prepare storage directories", zap.Error(err))
	}
	api := controller.NewAPI(cfg, store)

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		middleware.PanicRecover(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	server.Use(middleware.RequestId())
	server.Use(middleware.CORS())

	sessionSecret, err := base64.StdEncoding.DecodeString(config.SessionSecret)
	var sessionStore cookie.Store
	if err != nil {
		logger.Logger.Info("session secret is not base64 encoded, using raw value instead")
		sessionStore = cookie.NewStore([]byte(config.SessionSecret))
	} else {
		sessionStore = cookie.NewStore(sessionSecret, sessionSecret)
	}
	server.Use(sessions.Sessions("session", sessionStore))

	router.SetRouter(server, api)

	port := config.ServerPort
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
	if err = server.Run(":" + port); err != nil {
		logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
