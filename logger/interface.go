// Package logger is the structured logging surface of introspec. Components
// depend on Logger; ZeroLogger backs it with zerolog.
package logger

import "time"

// Logger creates leveled events. Events of disabled levels are dropped.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	WithFields(fields map[string]any) Logger
}

// LogEvent accumulates fields until Msg sends it.
type LogEvent interface {
	Msg(msg string)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Bytes(key string, val []byte) LogEvent
}
