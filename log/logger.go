package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const (
	FormatText = "text"
	FormatJson = "json"
)

// Config holds the logging configuration
type Config struct {
	Level     string `yaml:"level" default:"info"`
	Format    string `yaml:"format" default:"text"`
	Timestamp bool   `yaml:"timestamp" default:"true"`
}

// Logger is the global logging instance
// nolint:gochecknoglobals
var logger *logrus.Logger

// nolint:gochecknoinits
func init() {
	logger = logrus.New()

	ConfigureLogger(Config{
		Level:     "info",
		Format:    FormatText,
		Timestamp: true,
	})
}

// Log returns the global logger
func Log() *logrus.Logger {
	return logger
}

// PrefixedLog return the global logger with prefix
func PrefixedLog(prefix string) *logrus.Entry {
	return logger.WithField("prefix", prefix)
}

// ConfigureLogger applies configuration to the global logger
func ConfigureLogger(cfg Config) {
	if level, err := logrus.ParseLevel(cfg.Level); err != nil {
		logger.Fatalf("invalid log level %s %v", cfg.Level, err)
	} else {
		logger.SetLevel(level)
	}

	switch cfg.Format {
	case FormatText:
		logFormatter := &prefixed.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceFormatting:  true,
			ForceColors:      false,
			QuoteEmptyFields: true,
			DisableTimestamp: !cfg.Timestamp,
		}

		logFormatter.SetColorScheme(&prefixed.ColorScheme{
			PrefixStyle:    "blue+b",
			TimestampStyle: "white+h",
		})

		logger.SetFormatter(logFormatter)

	case FormatJson:
		logger.SetFormatter(&logrus.JSONFormatter{})

	default:
		logger.Fatalf("invalid log format %s", cfg.Format)
	}
}

// ValidFormat returns an error if the passed format is unknown
func ValidFormat(format string) error {
	if format != FormatText && format != FormatJson {
		return fmt.Errorf("log format should be '%s' or '%s', got '%s'", FormatText, FormatJson, format)
	}

	return nil
}

// ValidLevel returns an error if the passed level is unknown
func ValidLevel(level string) error {
	if _, err := logrus.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}

	return nil
}

// Silence disables the logger output
func Silence() {
	logger.Out = io.Discard
}
