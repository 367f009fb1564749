package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP fields.

// RequestID builds the request_id field.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method builds the HTTP method field.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path builds the request path field.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status builds the HTTP status field.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration builds a request duration field.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs builds a duration field in integer milliseconds.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes builds a response size field.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP builds the client IP field.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// Domain fields.

// UserID builds the user_id field.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Email builds the email field. Use sparingly in prod.
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// Provider builds the identity-provider name field.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// Flow builds the auth-flow field ("token" | "code").
func Flow(v string) zap.Field {
	return zap.String("flow", v)
}

// ReferralCode builds the referral code field.
func ReferralCode(v string) zap.Field {
	return zap.String("referral_code", v)
}

// System fields.

// Component builds the component field.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op builds the operation field.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer builds the layer field (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err builds an error field.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Generic fields.

// String builds a generic string field.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int builds a generic int field.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool builds a generic bool field.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// Any builds a field of any type.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
