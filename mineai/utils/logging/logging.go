package logging

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	AppLogger   *zap.Logger
	TimerLogger *zap.Logger
	ErrorLogger *zap.Logger
)

func newFileLogger(filename string, maxSizeMB, maxAgeDays int, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filename, MaxSize: maxSizeMB, MaxAge: maxAgeDays, Compress: true,
		}),
		level,
	)
	return zap.New(core)
}

func InitLogger() {
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		panic("Failed to create logs directory: " + err.Error())
	}
	AppLogger = newFileLogger("./logs/app.log", 100, 28, zap.InfoLevel)
	TimerLogger = newFileLogger("./logs/timer.log", 50, 7, zap.InfoLevel)
	ErrorLogger = newFileLogger("./logs/error.log", 100, 30, zap.ErrorLevel)
}

// InitTestLogger points every named logger at a no-op core so unit tests
// don't write a logs directory into the package dir.
func InitTestLogger() {
	AppLogger = zap.NewNop()
	TimerLogger = zap.NewNop()
	ErrorLogger = zap.NewNop()
}

// LogDuration lets you do: defer logging.LogDuration(ctx, "FuncName")()
func LogDuration(ctx context.Context, name string) func() {
	start := time.Now()
	traceID, _ := ctx.Value("trace_id").(string)

	return func() {
		fields := []zap.Field{
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		// timing goes ONLY to timer.log
		TimerLogger.Info("Function timed", fields...)
	}
}
