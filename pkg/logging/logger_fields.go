package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}

// Domain fields

func Domain(name string) Field {
	return String("domain", name)
}

// SourceName identifies the data source variant serving a request
func SourceName(name string) Field {
	return String("source", name)
}

func Subscriber(id string) Field {
	return String("subscriber_id", id)
}

func RequestID(id string) Field {
	return String("request_id", id)
}

// JobID is the remote search job handle
func JobID(sid string) Field {
	return String("job_id", sid)
}

func Matched(total, matched, returned int) []Field {
	return []Field{Int("total", total), Int("matched", matched), Int("returned", returned)}
}
