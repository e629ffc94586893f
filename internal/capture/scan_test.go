package capture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	camA = "00112233445566778899aabbccddeeff"
	camB = "ABCDEF0123456789ABCDEF0123456789" // hex matching is case-insensitive
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("jpegbytes"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanImages_CaptureTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, camA, "images", "snap1.jpg"))
	writeFile(t, filepath.Join(root, camA, "images", "snap2.jpg"))
	writeFile(t, filepath.Join(root, camA, "images", "notes.txt"))
	writeFile(t, filepath.Join(root, camB, "images", "other.jpg"))
	// Camera directory without an images folder yet.
	if err := os.MkdirAll(filepath.Join(root, strings.Repeat("ff", 16)), 0o755); err != nil {
		t.Fatal(err)
	}
	// Names that must not match: too short, too long, not hex, not a dir.
	if err := os.MkdirAll(filepath.Join(root, "0011223344", "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "0011223344", "images", "skip.jpg"))
	if err := os.MkdirAll(filepath.Join(root, strings.Repeat("g", 32), "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, strings.Repeat("g", 32), "images", "skip.jpg"))
	writeFile(t, filepath.Join(root, strings.Repeat("aa", 16)+"f")) // 33 chars, a file anyway

	got, err := ScanImages(root)
	if err != nil {
		t.Fatalf("ScanImages: %v", err)
	}
	var names []string
	for _, p := range got {
		if !filepath.IsAbs(p) {
			t.Errorf("path not absolute: %s", p)
		}
		names = append(names, filepath.Base(p))
	}
	want := []string{"snap1.jpg", "snap2.jpg", "other.jpg"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("scanned images mismatch:\n%s", diff)
	}
}

func TestScanImages_MissingRoot(t *testing.T) {
	if _, err := ScanImages(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing capture root")
	}
}

func TestCameraIDs(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{camA, camB, "not-a-camera", "deadbeef"} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := CameraIDs(root)
	if err != nil {
		t.Fatalf("CameraIDs: %v", err)
	}
	want := []string{camA, camB}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("camera ids mismatch:\n%s", diff)
	}
}
