package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// EnvDebug switches the logger to the development config when set to "true".
const EnvDebug = "PAYGRAPH_DEBUG"

func NewLogger() *zap.SugaredLogger {
	return newLogger(os.Getenv(EnvDebug) == "true")
}

// NewDebugLogger ignores the environment.
func NewDebugLogger() *zap.SugaredLogger { return newLogger(true) }

func newLogger(debug bool) *zap.SugaredLogger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	// stdout carries median output in pipe mode, logs go to stderr
	config.OutputPaths = []string{"stderr"}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger.Named("paygraph").Sugar()
}

type loggerKey struct{}

func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
		return logger
	}
	return NewLogger()
}
