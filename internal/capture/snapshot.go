package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/icholy/digest"
)

// DownloadError reports a snapshot endpoint answering with a non-200 status.
// The source contributes no image; the cycle goes on without it.
type DownloadError struct {
	URL    string
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
}

// fetchSnapshot GETs the source URL with HTTP digest authentication and
// writes the response body verbatim to Prefix + epoch-millis + ".jpg".
// Nothing is written unless the endpoint answers 200.
func (a *Acquirer) fetchSnapshot(ctx context.Context, src Source) (string, error) {
	client := &http.Client{
		Transport: &digest.Transport{Username: src.Username, Password: src.Password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", fmt.Errorf("snapshot request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &DownloadError{URL: src.URL, Status: resp.StatusCode}
	}

	out := fmt.Sprintf("%s%d.jpg", src.Prefix, a.now().UnixMilli())
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("snapshot dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(out)
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	return out, nil
}
