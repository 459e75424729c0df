package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Route(v string) zap.Field     { return zap.String("route", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - FLOTA / MARKETPLACE
// =================================================================================

// TenantID crea un campo para el ID del tenant.
func TenantID(v string) zap.Field { return zap.String("tenant_id", v) }

// TenantSlug crea un campo para el slug del tenant.
func TenantSlug(v string) zap.Field { return zap.String("tenant_slug", v) }

// ModuleSlug crea un campo para el módulo involucrado.
func ModuleSlug(v string) zap.Field { return zap.String("module", v) }

// ProductID crea un campo para el producto pedido al marketplace.
func ProductID(v string) zap.Field { return zap.String("product_id", v) }

// Modules crea un campo con un set de módulos.
func Modules(v []string) zap.Field { return zap.Strings("modules", v) }

// HubURL crea un campo con la URL del Hub (lado Silo).
func HubURL(v string) zap.Field { return zap.String("hub_url", v) }

// Interval crea un campo para intervalos de scheduling.
func Interval(v time.Duration) zap.Field { return zap.Duration("interval", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo interno.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// Count crea un campo para un conteo.
func Count(v int) zap.Field { return zap.Int("count", v) }

func Any(key string, v any) zap.Field       { return zap.Any(key, v) }
func String(key, v string) zap.Field        { return zap.String(key, v) }
func Int(key string, v int) zap.Field       { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field     { return zap.Bool(key, v) }
func Float(key string, v float64) zap.Field { return zap.Float64(key, v) }
