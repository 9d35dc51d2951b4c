// Package logging configures the process-wide logrus logger and adapts it to
// the logger interfaces of gorm and gin.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// Setup configures the standard logrus logger from a level name and a format
// ("json" or "text"). Unknown levels fall back to info.
func Setup(level, format string) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// GormLogger returns a gorm logger that writes through logrus. SQL tracing is
// only enabled when logrus runs at debug level.
func GormLogger() logger.Interface {
	level := logger.Warn
	if log.IsLevelEnabled(log.DebugLevel) {
		level = logger.Info
	}
	return logger.New(log.StandardLogger(), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// GinMiddleware logs one line per request.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}

// TaskLogger implements the backlite logger interface on top of logrus.
type TaskLogger struct{}

func (TaskLogger) Info(message string, params ...any) {
	log.WithFields(fieldsFromPairs(params)).Info("[TASK] " + message)
}

func (TaskLogger) Error(message string, params ...any) {
	log.WithFields(fieldsFromPairs(params)).Error("[TASK] " + message)
}

// fieldsFromPairs turns backlite's key/value parameter list into logrus fields.
func fieldsFromPairs(params []any) log.Fields {
	fields := log.Fields{}
	for i := 0; i+1 < len(params); i += 2 {
		key, ok := params[i].(string)
		if !ok {
			continue
		}
		fields[key] = params[i+1]
	}
	return fields
}
