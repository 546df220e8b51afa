package config

import (
	"io"
	"time"
)

// Config is the read-only view of runtime configuration used across the service.
//
// Keys are dotted paths into the configuration tree (for example
// "notification.dispatcher.workers"). Missing keys resolve to the zero value
// of the requested type.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetMillisecond reads an integer value as a number of milliseconds.
	GetMillisecond(key string) time.Duration
	// GetSecond reads an integer value as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer value as a number of minutes.
	GetMinute(key string) time.Duration

	// GetArray reads a comma separated value (or a YAML list) as a slice of strings.
	GetArray(key string) []string
	// GetMap reads a "k:v,k:v" value as a map.
	GetMap(key string) map[string]string
}
