package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unklstewy/cyberairpatrol/internal/watch"
	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// failingSource always returns err.
type failingSource struct {
	err error
}

func (f failingSource) GetAircraft(ctx context.Context, lat, lon, radius float64) ([]adsb.Aircraft, error) {
	return nil, f.err
}

func (f failingSource) GetAircraftByHex(ctx context.Context, hex string) (*adsb.Aircraft, error) {
	return nil, f.err
}

func (f failingSource) Ping(ctx context.Context) error { return f.err }

func (f failingSource) Close() error { return nil }

func newTestServer(t *testing.T, src adsb.DataSource) (*Server, *httptest.Server) {
	t.Helper()
	runner := watch.New(watch.Options{
		Source:   src,
		Observer: tracking.Observer{Lat: 41.0, Lon: -95.0},
		Filter:   tracking.TrackingFilter{Range: 10},
	})
	s := New(Options{Runner: runner, Source: src})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp, string(body)
}

// TestHealth tests the health endpoint.
func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, adsb.NewDemoSource())

	resp, body := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var health map[string]any
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", health["status"])
	}
	if _, ok := health["last_scan"]; ok {
		t.Error("Expected no last_scan before the first cycle")
	}
}

// TestGetAircraft tests the report endpoint.
func TestGetAircraft(t *testing.T) {
	_, ts := newTestServer(t, adsb.NewDemoSource())

	t.Run("Snapshot JSON", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/api/v1/aircraft")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json, got %s", ct)
		}

		var snap struct {
			Aircraft []struct {
				Hex            string  `json:"hex"`
				Distance       float64 `json:"distance"`
				Classification string  `json:"classification"`
				AltitudeBand   string  `json:"altitude_band"`
				Alerts         []struct {
					Type  string `json:"type"`
					Level string `json:"level"`
				} `json:"alerts"`
			} `json:"aircraft"`
			Summary struct {
				Total int `json:"total"`
			} `json:"summary"`
		}
		if err := json.Unmarshal([]byte(body), &snap); err != nil {
			t.Fatalf("Failed to decode snapshot: %v", err)
		}
		if len(snap.Aircraft) != 1 || snap.Aircraft[0].Hex != "a12345" {
			t.Fatalf("Expected a12345 only, got %+v", snap.Aircraft)
		}
		ac := snap.Aircraft[0]
		if ac.Classification != "AGRICULTURAL" {
			t.Errorf("Expected AGRICULTURAL, got %s", ac.Classification)
		}
		if ac.Distance < 1.4 || ac.Distance > 1.6 {
			t.Errorf("Expected distance ~1.48, got %f", ac.Distance)
		}
		if ac.AltitudeBand == "" {
			t.Error("Expected an altitude band")
		}
		if len(ac.Alerts) != 1 || ac.Alerts[0].Type != "proximity" || ac.Alerts[0].Level != "critical" {
			t.Errorf("Expected critical proximity alert, got %+v", ac.Alerts)
		}
		if snap.Summary.Total != 1 {
			t.Errorf("Expected total 1, got %d", snap.Summary.Total)
		}
	})

	formats := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"xml", "application/xml", "<aircraft_report"},
		{"yaml", "application/yaml", "distance_miles: 1.48"},
		{"html", "text/html; charset=utf-8", "<html"},
		{"text", "text/plain; charset=utf-8", "N123AG"},
		{"JSON", "application/json", `"hex": "a12345"`},
	}
	for _, tt := range formats {
		t.Run("Format "+tt.format, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/v1/aircraft?format="+tt.format)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected 200, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Expected %s, got %s", tt.contentType, ct)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("Expected body to contain %q, got:\n%s", tt.contains, body)
			}
		})
	}

	t.Run("Unknown format falls back to text", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/api/v1/aircraft?format=csv")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Errorf("Expected text/plain, got %s", ct)
		}
		if !strings.Contains(body, "N123AG") {
			t.Errorf("Expected text report, got:\n%s", body)
		}
	})
}

// TestGetAircraftFeedError tests that feed failures surface as 502.
func TestGetAircraftFeedError(t *testing.T) {
	_, ts := newTestServer(t, failingSource{err: errors.New("connection refused")})

	resp, body := get(t, ts.URL+"/api/v1/aircraft")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "connection refused") {
		t.Errorf("Expected error message in body, got %s", body)
	}
}

// TestGetAircraftByHex tests the single-aircraft endpoint.
func TestGetAircraftByHex(t *testing.T) {
	s, ts := newTestServer(t, adsb.NewDemoSource())
	if _, err := s.runner.Scan(t.Context()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	t.Run("From snapshot", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/api/v1/aircraft/A12345")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `"hex":"a12345"`) {
			t.Errorf("Expected a12345 in body, got %s", body)
		}
	})

	t.Run("From feed", func(t *testing.T) {
		// abc789 is outside the 10 mile range so it is not in the snapshot
		resp, body := get(t, ts.URL+"/api/v1/aircraft/abc789")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `"flight":"UAL232"`) {
			t.Errorf("Expected UAL232 in body, got %s", body)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		resp, _ := get(t, ts.URL+"/api/v1/aircraft/abcdef")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Invalid hex", func(t *testing.T) {
		resp, _ := get(t, ts.URL+"/api/v1/aircraft/xyz")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})
}

// TestGetAircraftByHexRateLimited tests 429 passthrough.
func TestGetAircraftByHexRateLimited(t *testing.T) {
	src := failingSource{err: &adsb.RateLimitError{StatusCode: 429, RetryAfter: 30 * time.Second, Message: "Rate limit exceeded"}}
	_, ts := newTestServer(t, src)

	resp, _ := get(t, ts.URL+"/api/v1/aircraft/a12345")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", resp.StatusCode)
	}
	if ra := resp.Header.Get("Retry-After"); ra != "30" {
		t.Errorf("Expected Retry-After 30, got %q", ra)
	}
}

// TestCORS tests the preflight response.
func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, adsb.NewDemoSource())

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/aircraft", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Preflight failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
}

// TestWebSocket tests that clients receive the latest snapshot on connect
// and every broadcast afterwards.
func TestWebSocket(t *testing.T) {
	s, ts := newTestServer(t, adsb.NewDemoSource())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	if _, err := s.runner.Scan(t.Context()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Type string `json:"type"`
		Data struct {
			Aircraft []struct {
				Hex string `json:"hex"`
			} `json:"aircraft"`
		} `json:"data"`
	}

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read initial snapshot: %v", err)
	}
	if msg.Type != MessageTypeSnapshot || len(msg.Data.Aircraft) != 1 {
		t.Fatalf("Expected initial snapshot with 1 aircraft, got %+v", msg)
	}

	if err := s.Hub().Broadcast(ctx, &Message{Type: MessageTypeError, Data: "feed down"}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	var errFrame struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if errFrame.Type != MessageTypeError || errFrame.Data != "feed down" {
		t.Errorf("Expected error frame, got %+v", errFrame)
	}

	t.Run("Snapshot request", func(t *testing.T) {
		if err := conn.WriteJSON(Message{Type: MessageTypeSnapshotRequest}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		msg.Type = ""
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed to read reply: %v", err)
		}
		if msg.Type != MessageTypeSnapshot {
			t.Errorf("Expected snapshot reply, got %s", msg.Type)
		}
	})
}

// TestRun tests startup and graceful shutdown.
func TestRun(t *testing.T) {
	s, _ := newTestServer(t, adsb.NewDemoSource())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.runner.Latest() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.runner.Latest() == nil {
		t.Error("Expected the watch loop to produce a snapshot")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
