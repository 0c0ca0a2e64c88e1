package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubHealth struct {
	ok   bool
	down []string
}

func (s stubHealth) IsHealthy() bool { return s.ok }
func (s stubHealth) Down() []string  { return s.down }

func TestHealthHandler_CheckHealth(t *testing.T) {
	cases := []struct {
		name   string
		health ServiceHealth
		want   string
		down   int
	}{
		{"up", stubHealth{ok: true}, "UP", 0},
		{"down", stubHealth{ok: false, down: []string{"store"}}, "DOWN", 1},
		{"unbound", nil, "DOWN", 0},
	}
	for _, tc := range cases {
		h := NewHealthHandler(tc.health)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()
		h.CheckHealth(w, req)
		if code := w.Result().StatusCode; code != http.StatusOK {
			t.Fatalf("%s: unexpected status code: %d", tc.name, code)
		}
		var body struct {
			Status string   `json:"status"`
			Down   []string `json:"down"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body.Status != tc.want || len(body.Down) != tc.down {
			t.Fatalf("%s: got %+v", tc.name, body)
		}
	}
}
