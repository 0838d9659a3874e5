package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method es el método HTTP del request.
func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// DurationMs es la duración en milisegundos (lo que emite el middleware).
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - BROKER
// =================================================================================

// Provider identifica el canal upstream (github, pml, seeyon-chat, yikong).
func Provider(v string) zap.Field { return zap.String("provider", v) }

// AuthMethod es el método de custom sign-on (V5_MD5, YIKONG).
func AuthMethod(v string) zap.Field { return zap.String("auth_method", v) }

// Phase es el estado del flujo de autorización (PENDING_REDIRECT ... FAILED).
func Phase(v string) zap.Field { return zap.String("phase", v) }

// Code loguea solo un prefijo de un código de un solo uso o state.
func Code(key, v string) zap.Field {
	if len(v) > 8 {
		v = v[:8] + "…"
	}
	return zap.String(key, v)
}

func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email loguea el email tal cual; en prod pasar por util.MaskEmail antes.
func Email(v string) zap.Field { return zap.String("email", v) }

func KeyID(v string) zap.Field { return zap.String("kid", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

// Op es la operación actual, ej "OAuthController.Callback".
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer es la capa (controller, service, adapter).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// =================================================================================
// CAMPOS GENÉRICOS
// =================================================================================

func Count(v int) zap.Field { return zap.Int("count", v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
