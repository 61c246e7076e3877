package logger

import (
	"io"
	"os"
	"strings"
)

// Level represents the severity of the log message.
type Level int

const (
	// LevelDebug is for debug-level messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format selects the output encoding of log records.
type Format string

const (
	FormatText = Format("text")
	FormatJSON = Format("json")
)

// Config holds configuration for the logger.
type Config struct {
	Level  Level     // Minimum level emitted
	Format Format    // Output encoding (text or json)
	Output io.Writer // Output destination (for testing); defaults to stderr
}

// ParseLevel parses a string into a Level (defaults to LevelInfo).
func ParseLevel(lvl string) Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoadConfig builds a Config from the given flag values, falling back to
// the YOYO_LOG_LEVEL and YOYO_LOG_FORMAT environment variables when the
// flags are empty.
func LoadConfig(levelFlag, formatFlag string) Config {
	levelStr := levelFlag
	if levelStr == "" {
		levelStr = getEnv("YOYO_LOG_LEVEL", "info")
	}
	formatStr := formatFlag
	if formatStr == "" {
		formatStr = getEnv("YOYO_LOG_FORMAT", string(FormatText))
	}

	format := FormatText
	if strings.EqualFold(formatStr, string(FormatJSON)) {
		format = FormatJSON
	}

	return Config{
		Level:  ParseLevel(levelStr),
		Format: format,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// EnvVarHelp describes one environment variable for usage output.
type EnvVarHelp struct {
	Name        string
	Description string
}

// GetEnvVarsHelp returns the logger environment variables for usage output.
func GetEnvVarsHelp() []EnvVarHelp {
	return []EnvVarHelp{
		{"YOYO_LOG_LEVEL", "Log level (debug, info, warn, error); default info"},
		{"YOYO_LOG_FORMAT", "Log output format (text, json); default text"},
	}
}
