package adsb

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const localSnapshot = `{"now":1700000000.1,"messages":12345,"aircraft":[
	{"hex":"a12345","flight":"N123AG","lat":41.02,"lon":-95.01,"alt_baro":1150},
	{"hex":"abc789","flight":"UAL232","lat":42.5,"lon":-95.0,"alt_baro":35000},
	{"hex":"c0ffee","alt_baro":5000}
]}`

// TestLocalClientFile tests reading aircraft.json from disk.
func TestLocalClientFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircraft.json")
	if err := os.WriteFile(path, []byte(localSnapshot), 0644); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}

	client := NewLocalClient(path, nil)

	t.Run("Applies radius and drops unpositioned", func(t *testing.T) {
		aircraft, err := client.GetAircraft(t.Context(), 41.0, -95.0, 10)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(aircraft) != 1 || aircraft[0].Hex != "a12345" {
			t.Errorf("Expected only a12345 in range, got %+v", aircraft)
		}
	})

	t.Run("Lookup by hex", func(t *testing.T) {
		ac, err := client.GetAircraftByHex(t.Context(), "C0FFEE")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if ac == nil || ac.Hex != "c0ffee" {
			t.Errorf("Expected c0ffee, got %+v", ac)
		}

		missing, err := client.GetAircraftByHex(t.Context(), "ffffff")
		if err != nil || missing != nil {
			t.Errorf("Expected nil, nil; got %v, %v", missing, err)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		bad := NewLocalClient(filepath.Join(t.TempDir(), "nope.json"), nil)
		if err := bad.Ping(t.Context()); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

// TestLocalClientURL tests reading aircraft.json over HTTP.
func TestLocalClientURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tar1090/data/aircraft.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, localSnapshot)
	}))
	defer server.Close()

	client := NewLocalClient(server.URL+"/tar1090/data/aircraft.json", nil)
	if err := client.Ping(t.Context()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	aircraft, err := client.GetAircraft(t.Context(), 41.0, -95.0, 200)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(aircraft) != 2 {
		t.Errorf("Expected 2 positioned aircraft within 200 mi, got %d", len(aircraft))
	}

	broken := NewLocalClient(server.URL+"/missing", nil)
	if _, err := broken.GetAircraft(t.Context(), 41.0, -95.0, 10); err == nil {
		t.Error("Expected error for 404")
	}
}
