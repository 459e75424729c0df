package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger del proceso.
type Config struct {
	// Env "prod" emite JSON; cualquier otro valor, consola con colores.
	Env string
	// Level acepta los nombres de zapcore (debug, info, warn, error). Default info.
	Level       string
	ServiceName string
	Version     string
}

func (c Config) production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "prod")
}

// build arma el core a mano para compartir el AtomicLevel con SetLevel.
func build(cfg Config, lvl zap.AtomicLevel) *zap.Logger {
	lvl.SetLevel(parseLevel(cfg.Level))

	var (
		enc  zapcore.Encoder
		opts = []zap.Option{zap.AddCaller()}
	)
	if cfg.production() {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)
	l := zap.New(core, opts...)

	var base []zap.Field
	if cfg.ServiceName != "" {
		base = append(base, zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		base = append(base, zap.String("version", cfg.Version))
	}
	return l.With(base...)
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil || s == "" {
		return zapcore.InfoLevel
	}
	return lvl
}
