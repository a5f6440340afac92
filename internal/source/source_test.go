package source

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		locator string
		want    bool
	}{
		{"http://example.com/track.mp3", true},
		{"https://example.com/track.mp3", true},
		{"/music/track.mp3", false},
		{"track.mp3", false},
		{"ftp://example.com/track.mp3", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.locator); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.locator, got, tt.want)
		}
	}
}

func TestFile_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	want := []byte("encoded audio bytes")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	var done, total int64
	got, err := NewFile().Fetch(context.Background(), path, func(d, tot int64) {
		done, total = d, tot
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Fetch() = %q, want %q", got, want)
	}
	if done != int64(len(want)) || total != int64(len(want)) {
		t.Errorf("progress = (%d, %d), want (%d, %d)", done, total, len(want), len(want))
	}
}

func TestFile_FetchMissing(t *testing.T) {
	_, err := NewFile().Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), nil)
	if err == nil {
		t.Fatal("Fetch() of a missing file should fail")
	}
}

func TestFile_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFile().Fetch(ctx, "/music/track.mp3", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() = %v, want context.Canceled", err)
	}
}

func TestHTTP_Fetch(t *testing.T) {
	want := bytes.Repeat([]byte("audio"), 50_000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(want)
	}))
	defer srv.Close()

	var calls int
	var lastDone int64
	got, err := NewHTTP(0).Fetch(context.Background(), srv.URL, func(done, total int64) {
		calls++
		lastDone = done
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Fetch() returned %d bytes, want %d", len(got), len(want))
	}
	if calls == 0 {
		t.Error("progress was never reported")
	}
	if lastDone != int64(len(want)) {
		t.Errorf("final progress done = %d, want %d", lastDone, len(want))
	}
}

func TestHTTP_FetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTP(0).Fetch(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("Fetch() should fail on non-200 status")
	}
}

func TestHTTP_FetchCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTP(0).Fetch(ctx, srv.URL, nil)
	if err == nil {
		t.Fatal("Fetch() with cancelled context should fail")
	}
}

func TestRouter_Dispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.mp3")
	if err := os.WriteFile(path, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	r := NewRouter(NewFile(), NewHTTP(0))

	got, err := r.Fetch(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Fetch(file) error: %v", err)
	}
	if string(got) != "local" {
		t.Errorf("Fetch(file) = %q, want routed to the file source", got)
	}

	got, err = r.Fetch(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Fetch(http) error: %v", err)
	}
	if string(got) != "remote" {
		t.Errorf("Fetch(http) = %q, want routed to the HTTP source", got)
	}
}
