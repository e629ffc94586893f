package capture

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testAcquirer(millis int64) *Acquirer {
	a := NewAcquirer(nil)
	a.now = func() time.Time { return time.UnixMilli(millis) }
	return a
}

func TestFetchSnapshot_WritesBodyVerbatim(t *testing.T) {
	body := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	prefix := filepath.Join(t.TempDir(), "snap_")
	a := testAcquirer(1700000000123)
	path, err := a.fetchSnapshot(context.Background(), Source{
		Kind: HTTPSnapshot, URL: server.URL, Prefix: prefix,
	})
	if err != nil {
		t.Fatalf("fetchSnapshot: %v", err)
	}
	if want := prefix + "1700000000123.jpg"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("snapshot body mismatch: got %d bytes", len(got))
	}
}

func TestFetchSnapshot_Non200WritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := t.TempDir()
	a := testAcquirer(42)
	_, err := a.fetchSnapshot(context.Background(), Source{
		Kind: HTTPSnapshot, URL: server.URL, Prefix: filepath.Join(dir, "snap_"),
	})
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Fatalf("want *DownloadError, got %T: %v", err, err)
	}
	if de.Status != http.StatusServiceUnavailable {
		t.Errorf("DownloadError.Status = %d", de.Status)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("non-200 must write nothing, found %d entries", len(entries))
	}
}

func TestFetchSnapshot_DigestChallenge(t *testing.T) {
	var authed string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Digest realm="cam", nonce="8f0e7b9d", qop="auth"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		authed = auth
		w.Write([]byte("still"))
	}))
	defer server.Close()

	a := testAcquirer(7)
	path, err := a.fetchSnapshot(context.Background(), Source{
		Kind:     HTTPSnapshot,
		URL:      server.URL,
		Username: "admin",
		Password: "swordfish",
		Prefix:   filepath.Join(t.TempDir(), "snap_"),
	})
	if err != nil {
		t.Fatalf("fetchSnapshot: %v", err)
	}
	if !strings.HasPrefix(authed, "Digest ") || !strings.Contains(authed, `username="admin"`) {
		t.Errorf("expected digest authorization, got %q", authed)
	}
	if got, _ := os.ReadFile(path); string(got) != "still" {
		t.Errorf("snapshot content = %q", got)
	}
}
