package logging

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/sghaida/shared/internal/config"
)

// Setup configures the logrus standard logger from cfg and returns it.
//
// Holders without an explicit logger write through the standard logger, so
// calling Setup before first access is enough to route their output.
func Setup(cfg config.Config, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := log.StandardLogger()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(formatter(cfg.LogFormat))
	return logger, nil
}

func formatter(format string) log.Formatter {
	if format == "json" {
		return &log.JSONFormatter{}
	}
	return &log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	}
}
