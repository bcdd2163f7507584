package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

func init() {
	Logger = build(zapcore.InfoLevel)
}

// Configure rebuilds the process logger at the given level ("DEBUG", "INFO",
// ...). Invalid levels fall back to info.
func Configure(levelName string) {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		Logger.Info("Invalid log level, using info level", zap.String("log_level", levelName))

		level = zapcore.InfoLevel
	}

	Logger = build(level)
}

func build(level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	return zap.New(core)
}
