package logger

import (
	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger: a colored console core, plus a rotated
// JSON file core when filePath is non-empty. The returned logger is also
// installed as the zap global.
func New(filePath string, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	// Custom encoder config
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    colorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(
			consoleEncoder,
			zapcore.AddSync(color.Output),
			zap.NewAtomicLevelAt(level),
		),
	}

	if filePath != "" {
		fileConfig := encoderConfig
		fileConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filePath,
				MaxSize:    100, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}),
			zap.NewAtomicLevelAt(level),
		))
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	zap.ReplaceGlobals(logger)
	return logger, nil
}

// Custom level encoder with colors
func colorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DebugLevel:
		enc.AppendString(color.BlueString("DEBUG"))
	case zapcore.InfoLevel:
		enc.AppendString(color.GreenString("INFO"))
	case zapcore.WarnLevel:
		enc.AppendString(color.YellowString("WARN"))
	case zapcore.ErrorLevel:
		enc.AppendString(color.RedString("ERROR"))
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		enc.AppendString(color.MagentaString("CRITICAL"))
	default:
		enc.AppendString(color.WhiteString(l.CapitalString()))
	}
}
