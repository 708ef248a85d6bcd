package common

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/Laisky/zap"

	"github.com/scriptgen-ra/scriptgen/common/logger"
)

var (
	Port   = flag.Int("port", 3001, "the listening port")
	LogDir = flag.String("log-dir", "./logs", "specify the log directory")
)

func Init() {
	flag.Parse()

	if *LogDir != "" {
		expanded, err := filepath.Abs(os.ExpandEnv(*LogDir))
		if err != nil {
			logger.Logger.Fatal("failed to get absolute log dir", zap.Error(err))
		}

		if err = os.MkdirAll(expanded, 0o777); err != nil {
			logger.Logger.Fatal("failed to create log dir", zap.Error(err))
		}

		logger.LogDir = expanded
		*LogDir = expanded
	}
}
