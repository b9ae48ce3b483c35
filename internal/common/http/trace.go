package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/messagely/backend/internal/common/constants"
)

const traceIDHeader = "X-Trace-ID"

func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set(traceIDHeader, traceID)

		ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(constants.TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
