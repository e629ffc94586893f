package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Capture tools write one directory per camera, named by a 32-character hex
// identifier, with the stills in an images/ subfolder.
var cameraDirPat = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// CameraIDs returns the camera identifiers present under root, in
// directory-listing order.
func CameraIDs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read capture dir: %w", err)
	}
	var ids []string
	for _, ent := range entries {
		if ent.IsDir() && cameraDirPat.MatchString(ent.Name()) {
			ids = append(ids, ent.Name())
		}
	}
	return ids, nil
}

// ScanImages collects the .jpg files under <root>/<camera-id>/images for
// every camera directory, as absolute paths. Order follows the directory
// listing and is not otherwise guaranteed. A camera without an images
// folder yet contributes nothing.
func ScanImages(root string) ([]string, error) {
	ids, err := CameraIDs(root)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, id := range ids {
		dir := filepath.Join(root, id, "images")
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".jpg") {
				continue
			}
			abs, err := filepath.Abs(filepath.Join(dir, ent.Name()))
			if err != nil {
				continue
			}
			images = append(images, abs)
		}
	}
	return images, nil
}
