// Package requestcontext carries the request id and the request's "now"
// through a mapping build, whether it started from the CLI or from HTTP.
//
//	ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
//	ctx = requestcontext.WithTime(ctx, time.Now())
//	...
//	event.RequestID = requestcontext.RequestID(ctx)
package requestcontext

import (
	"context"
	"time"
)

type key uint8

const (
	requestIDKey key = iota
	requestTimeKey
)

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the time pinned by WithTime, falling back to the wall clock so
// audit timestamps are never zero.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
