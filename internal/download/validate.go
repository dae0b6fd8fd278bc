package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
)

// FileStatus reports whether a remote archive's local copy is
// present and complete.
type FileStatus struct {
	URL         string
	LocalPath   string
	RemoteBytes int64
	LocalBytes  int64
	Complete    bool
}

// Validate compares the local downloadDir's contents against the
// remote URLs' advertised sizes (via HEAD requests), reporting which
// archives are missing or incomplete (spec.md §4.B, §8).
func Validate(ctx context.Context, client *http.Client, userAgent func() string, urls []string, downloadDir string) ([]FileStatus, error) {
	statuses := make([]FileStatus, 0, len(urls))
	for _, u := range urls {
		remoteBytes, err := headContentLength(ctx, client, userAgent, u)
		if err != nil {
			return nil, err
		}

		localPath := filepath.Join(downloadDir, filepath.Base(u))
		localBytes := int64(-1)
		if info, statErr := os.Stat(localPath); statErr == nil {
			localBytes = info.Size()
		}

		statuses = append(statuses, FileStatus{
			URL:         u,
			LocalPath:   localPath,
			RemoteBytes: remoteBytes,
			LocalBytes:  localBytes,
			Complete:    localBytes >= 0 && localBytes == remoteBytes,
		})
	}
	return statuses, nil
}

// Missing filters statuses down to archives that still need downloading.
func Missing(statuses []FileStatus) []FileStatus {
	var out []FileStatus
	for _, s := range statuses {
		if !s.Complete {
			out = append(out, s)
		}
	}
	return out
}

func headContentLength(ctx context.Context, client *http.Client, userAgent func() string, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, ingesterr.WrapStructural("download.Validate: build HEAD request", err)
	}
	if userAgent != nil {
		req.Header.Set("User-Agent", userAgent())
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, ingesterr.WrapTransient("download.Validate: HEAD "+url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if cr := resp.Header.Get("Content-Range"); cr != "" {
			if total := parseContentRangeTotal(cr); total >= 0 {
				return total, nil
			}
		}
		return 0, ingesterr.WrapTransient("download.Validate", fmt.Errorf("unexpected HEAD status %d from %s", resp.StatusCode, url))
	}
	return resp.ContentLength, nil
}
