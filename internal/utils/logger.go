// Package utils holds small cross-cutting helpers. Right now that is
// only the process-wide logger setup.
package utils

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger. Production
// environments emit JSON lines with ISO 8601 timestamps so the output
// can be shipped as-is; everything else gets the human-readable text
// formatter. LOG_LEVEL overrides the default info level.
func InitLogger(env string) {
	if strings.EqualFold(env, "production") {
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := log.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	log.SetLevel(level)
}
