package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log *types.Logger

	hookMu  sync.RWMutex
	logHook types.LogHook
)

// Config represents configuration options for logger initialization
type Config struct {
	Debug        bool           // Enable debug logging
	TimeLocation *time.Location // Time zone of the timestamps (default: UTC)
	LogToFile    bool           // Also write JSON logs to a file
	LogsDir      string         // Directory for log files, relative to the working directory
}

// SetLogHook sets a hook function that will be called for each log entry
func SetLogHook(hook types.LogHook) {
	hookMu.Lock()
	logHook = hook
	hookMu.Unlock()
	Log.Debug("Log hook set")
}

func callHook(entry zapcore.Entry) error {
	hookMu.RLock()
	hook := logHook
	hookMu.RUnlock()
	if hook == nil {
		return nil
	}
	// The hook may log itself, so it never runs on the logging goroutine.
	go hook(types.Log{
		Timestamp:  entry.Time,
		Caller:     entry.Caller.String(),
		LoggerName: entry.LoggerName,
		Level:      entry.Level,
		Message:    entry.Message,
	})
	return nil
}

// Init builds the global logger: a coloured console core and, optionally,
// a JSON file core.
func Init(config Config) error {
	l := types.Logger{Name: "main"}

	location := config.TimeLocation
	if location == nil {
		location = time.UTC
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(location).Format("2006-01-02 15:04:05"))
		},
	}

	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), level),
	}

	if config.LogToFile {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		l.LogsPath = config.LogsDir
		if !filepath.IsAbs(l.LogsPath) {
			l.LogsPath = filepath.Join(wd, config.LogsDir)
		}
		if err = os.MkdirAll(l.LogsPath, os.ModePerm); err != nil {
			return err
		}

		logPath := filepath.Join(l.LogsPath, fmt.Sprintf("%s.log", time.Now().In(location).Format("2006-01-02_15-04")))
		fileWriter, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}

		fileEncoderConfig := encoderConfig
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(fileWriter), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.Hooks(callHook))

	l.SugaredLogger = log.Named(l.Name).Sugar()
	Log = &l

	return nil
}

// Named returns a new logger with the specified name ("bot", "database", etc.)
func Named(name string) (*types.Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &types.Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		LogsPath:      Log.LogsPath,
		Name:          name,
	}, nil
}

// Nop returns a logger that discards everything, for tests and tools.
func Nop() *types.Logger {
	return &types.Logger{SugaredLogger: zap.NewNop().Sugar(), Name: "nop"}
}
