package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		logMsg string
		level  string
		want   bool // whether we expect the message to appear
	}{
		{
			name:   "info level logs info",
			cfg:    Config{Level: "info", Format: "json"},
			logMsg: "test message",
			level:  "info",
			want:   true,
		},
		{
			name:   "info level does not log debug",
			cfg:    Config{Level: "info", Format: "json"},
			logMsg: "test message",
			level:  "debug",
			want:   false,
		},
		{
			name:   "debug level logs debug",
			cfg:    Config{Level: "debug", Format: "json"},
			logMsg: "test message",
			level:  "debug",
			want:   true,
		},
		{
			name:   "error level does not log warn",
			cfg:    Config{Level: "error", Format: "json"},
			logMsg: "test message",
			level:  "warn",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.cfg.Output = buf
			logger := NewLogger(tt.cfg)

			switch tt.level {
			case "debug":
				logger.Debug(tt.logMsg)
			case "info":
				logger.Info(tt.logMsg)
			case "warn":
				logger.Warn(tt.logMsg)
			case "error":
				logger.Error(tt.logMsg)
			}

			got := strings.Contains(buf.String(), tt.logMsg)
			if got != tt.want {
				t.Errorf("expected message presence=%v, got=%v, output=%s", tt.want, got, buf.String())
			}
		})
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: "info", Format: "json", Output: buf})

	logger.Info("test message", "key", "value")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON log: %v, output: %s", err, buf.String())
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got=%v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("expected key='value', got=%v", logEntry["key"])
	}
}

func TestLoggerTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: "info", Format: "text", Output: buf})

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected 'test message' in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected 'key=value' in output, got: %s", output)
	}
}

func TestLoggerWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: "info", Format: "json", Output: buf})

	logger.WithComponent("api").Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}

	if logEntry["component"] != "api" {
		t.Errorf("expected component='api', got=%v", logEntry["component"])
	}
}

func TestLoggerContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: "debug", Format: "json", Output: buf})

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithComponent(ctx, "storage")

	logger.InfoContext(ctx, "test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}

	if logEntry["request_id"] != "req-123" {
		t.Errorf("expected request_id='req-123', got=%v", logEntry["request_id"])
	}
	if logEntry["component"] != "storage" {
		t.Errorf("expected component='storage', got=%v", logEntry["component"])
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %v, want req-123", got)
	}

	if got := RequestIDFromContext(WithRequestID(context.Background(), "")); got != "" {
		t.Errorf("expected empty string for empty request id, got %q", got)
	}
	if got := RequestIDFromContext(nil); got != "" { //nolint:staticcheck // nil context handling
		t.Errorf("expected empty string for nil context, got %q", got)
	}
}

func TestWithComponent(t *testing.T) {
	ctx := WithComponent(context.Background(), "coach")
	if got := ComponentFromContext(ctx); got != "coach" {
		t.Errorf("ComponentFromContext() = %v, want coach", got)
	}
	if got := ComponentFromContext(context.Background()); got != "" {
		t.Errorf("expected empty component, got %q", got)
	}
}

func TestNewLoggerFromSlog(t *testing.T) {
	buf := &bytes.Buffer{}
	slogger := slog.New(slog.NewJSONHandler(buf, nil))

	logger := NewLoggerFromSlog(slogger)
	logger.Info("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected 'test message' in output, got: %s", buf.String())
	}

	if NewLoggerFromSlog(nil) == nil {
		t.Error("expected non-nil logger for nil slog input")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LEARNCOACH_LOG_LEVEL", "debug")
	t.Setenv("LEARNCOACH_LOG_FORMAT", "text")

	cfg := ConfigFromEnv()
	if cfg.Level != "debug" {
		t.Errorf("expected Level='debug', got=%s", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("expected Format='text', got=%s", cfg.Format)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected Level='info', got=%s", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected Format='json', got=%s", cfg.Format)
	}
}
