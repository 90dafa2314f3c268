package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nikhil/tsview/internal/handlers"
	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/models"
)

type stubCache struct{}

func (stubCache) GetOrRefresh(ctx context.Context) (*models.ServerInfo, error) {
	return &models.ServerInfo{Name: "stub", Channels: []*models.ChannelNode{}}, nil
}

func newTestRouter() http.Handler {
	hub := handlers.NewHub()
	go hub.Run()
	return RegisterAllRoutes(Deps{
		Cache: stubCache{},
		Hub:   hub,
		Log:   logger.NewLogger("test"),
	})
}

func TestRoutes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method, path string
		wantStatus   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			if rec.Code != tc.wantStatus {
				t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.wantStatus)
			}
		})
	}
}
