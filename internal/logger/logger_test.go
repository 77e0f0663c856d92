package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Feature: food-catalog, Property 1: Logs are structured
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer

			encoderConfig := zap.NewProductionEncoderConfig()
			encoderConfig.TimeKey = "timestamp"
			encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)
			logger := zap.New(core)

			switch level {
			case "debug":
				logger.Debug(message, zap.Int64("product_id", 42))
			case "warn":
				logger.Warn(message, zap.Int64("product_id", 42))
			case "error":
				logger.Error(message, zap.Int64("product_id", 42))
			default:
				logger.Info(message, zap.Int64("product_id", 42))
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			if entry["level"] != level {
				return false
			}
			if _, ok := entry["timestamp"]; !ok {
				return false
			}
			if entry["msg"] != message {
				return false
			}

			// JSON numbers decode as float64
			return entry["product_id"] == float64(42)
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewProductionLogsAtInfo(t *testing.T) {
	logger, err := New("production")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should not emit debug entries")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("production logger should emit info entries")
	}
}

func TestNewDevelopmentLogsAtDebug(t *testing.T) {
	logger, err := New("development")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("development logger should emit debug entries")
	}
}

func TestMustNeverReturnsNil(t *testing.T) {
	if Must("staging") == nil {
		t.Fatal("Must returned nil logger")
	}
}
