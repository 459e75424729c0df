package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	once    sync.Once
	current atomic.Pointer[zap.Logger]
	level   = zap.NewAtomicLevel()
)

// Init construye el logger global. Llamadas posteriores no tienen efecto.
func Init(cfg Config) {
	once.Do(func() { current.Store(build(cfg, level)) })
}

// L devuelve el logger global; sin Init previo usa dev/info.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(Config{})
	return current.Load()
}

// SetLevel cambia el nivel en caliente.
func SetLevel(s string) { level.SetLevel(parseLevel(s)) }

// Replace instala l como logger global y devuelve la función que restaura el anterior.
func Replace(l *zap.Logger) (restore func()) {
	once.Do(func() {})
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

// Sync flushea el logger global; va con defer en cada main.
func Sync() error {
	if l := current.Load(); l != nil {
		return l.Sync()
	}
	return nil
}
