// Package logger wraps zap's sugared logger behind variadic key/value
// methods and scrubs sensitive report fields before they reach any sink.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	if m := strings.ToLower(strings.TrimSpace(mode)); m == "prod" || m == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Test helper.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, scrubPairs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, scrubPairs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, scrubPairs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, scrubPairs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, scrubPairs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrubPairs(keysAndValues)...)}
}

const redacted = "[REDACTED]"

// Key fragments whose values never reach a sink. The child_* entries cover
// the parent-reported details of the finish form.
var sensitiveKeyParts = []string{
	"token",
	"authorization",
	"password",
	"secret",
	"cookie",
	"api_key",
	"apikey",
	"child_preference",
	"child_name",
}

var (
	scrubOnce sync.Once
	scrubOn   bool
)

func scrubEnabled() bool {
	scrubOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("APA_LOG_REDACTION"))) {
		case "0", "false", "no", "off":
			scrubOn = false
		default:
			scrubOn = true
		}
	})
	return scrubOn
}

// scrubPairs walks zap-style alternating key/value arguments. A trailing
// dangling key is passed through untouched for zap to complain about.
func scrubPairs(kv []interface{}) []interface{} {
	if len(kv) == 0 || !scrubEnabled() {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, _ := out[i].(string)
		out[i+1] = scrubValue(key, out[i+1])
	}
	return out
}

func scrubValue(key string, val interface{}) interface{} {
	if sensitiveKey(key) {
		return redacted
	}
	switch v := val.(type) {
	case map[string]interface{}:
		clean := make(map[string]interface{}, len(v))
		for k, inner := range v {
			clean[k] = scrubValue(k, inner)
		}
		return clean
	case []interface{}:
		clean := make([]interface{}, len(v))
		for i, inner := range v {
			clean[i] = scrubValue("", inner)
		}
		return clean
	case string:
		if looksLikeToken(v) {
			return redacted
		}
	case fmt.Stringer, error:
		// Leave rendered types alone; their keys decide redaction.
	}
	return val
}

func sensitiveKey(key string) bool {
	if key == "" {
		return false
	}
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// looksLikeToken flags three-segment dotted strings of JWT-ish length.
func looksLikeToken(s string) bool {
	return len(s) > 40 && strings.Count(s, ".") == 2 && !strings.ContainsAny(s, " \t\n")
}
