// Package health probes the dev server for readiness.
package health

import (
	"context"
	"net/http"
	"time"
)

type HttpHealthCheck struct {
	Method string
	Url    string
}

// CheckHttp reports whether an HTTP server answered at all. Non-200 status
// codes still count as healthy, because something responded.
func CheckHttp(healthCheck HttpHealthCheck) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, healthCheck.Method, healthCheck.Url, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return true
}
