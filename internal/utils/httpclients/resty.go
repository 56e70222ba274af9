package httpclients

import (
	"context"
	"time"

	"github.com/rocketman0418/astra-chats/internal/infrastructure/logger"

	"resty.dev/v3"
)

type HTTPClientStartsAt struct{}

// requestIDFrom reads the request id the edge middleware stores on the
// request context under the string key "requestID".
func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value("requestID").(string); ok {
		return id
	}
	return ""
}

// NewClient builds a resty client that logs one debug line per request.
// Request and response bodies are never logged, they carry chat content.
func NewClient(clientName string) *resty.Client {
	client := resty.New()
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		ctx := context.WithValue(r.Context(), HTTPClientStartsAt{}, time.Now())
		r.SetContext(ctx)
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		startTime, _ := r.Request.Context().Value(HTTPClientStartsAt{}).(time.Time)
		latency := time.Since(startTime)

		log.Debug().
			Str("request_id", requestIDFrom(r.Request.Context())).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Str("method", r.Request.RawRequest.Method).
			Str("path", r.Request.RawRequest.URL.Path).
			Dur("latency", latency).
			Msg("HTTP client request")
		return nil
	})
	return client
}
