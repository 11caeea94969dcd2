// Package logx threads a single github.com/rsms/go-log logger through the
// server the way redis/redis.go threads *log.Logger into a Redis
// connection: one logger constructed at startup, passed down by reference
// rather than pulled from a global.
package logx

import "github.com/rsms/go-log"

type Logger = log.Logger

// New creates a logger writing to stderr with the given name, e.g. "server",
// "replication", "pubsub".
func New(name string) *Logger {
	l := log.New(name)
	return l
}

// Trace logs at Debug level through l; a nil logger makes it a no-op.
func Trace(l *Logger, format string, args ...interface{}) {
	if l != nil {
		l.Debug(format, args...)
	}
}
