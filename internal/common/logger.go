package common

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the process-wide logger, creating a console
// logger on first use.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = newConsoleLogger("info")
	}
	return globalLogger
}

// InitLogger configures the global logger from the configured level.
func InitLogger(level string) arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = newConsoleLogger(level)
	return globalLogger
}

func newConsoleLogger(level string) arbor.ILogger {
	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})
	if level != "" {
		logger = logger.WithLevelFromString(level)
	}
	return logger
}
