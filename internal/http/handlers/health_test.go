package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		db     Pinger
		status int
		body   string
	}{
		{nil, http.StatusOK, `{"status":"healthy"}`},
		{fakePinger{}, http.StatusOK, `{"status":"healthy"}`},
		{fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable, `{"error":"database unreachable","status":"unhealthy"}`},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/health", NewHealthHandler(tc.db).HealthCheck)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != tc.status || rec.Body.String() != tc.body {
			t.Fatalf("health: want=%d %s got=%d %s", tc.status, tc.body, rec.Code, rec.Body.String())
		}
	}
}
