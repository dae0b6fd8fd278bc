package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// Task downloads a single URL to destDir, resuming from a ".part"
// sidecar file if one is present (spec.md §4.B).
type Task struct {
	URL        string
	DestDir    string
	HTTPClient *http.Client
	UserAgent  func() string

	ChunkBytes   int
	ChunkTimeout time.Duration
	MaxRetries   int

	// OnProgress, if set, is called after every chunk write with the
	// cumulative bytes written for this file.
	OnProgress func(written, total int64)
}

// finalPath and partPath return, respectively, the destination file's
// final and in-progress sidecar paths.
func (t *Task) finalPath() string { return filepath.Join(t.DestDir, filepath.Base(t.URL)) }
func (t *Task) partPath() string  { return t.finalPath() + ".part" }

// Run downloads the archive, retrying transient failures up to
// MaxRetries times with exponential backoff, resuming from wherever
// the ".part" file left off. It returns nil immediately if the final
// file already exists.
func (t *Task) Run(ctx context.Context) error {
	if _, err := os.Stat(t.finalPath()); err == nil {
		return nil
	}

	maxRetries := t.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 100
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries))
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		runErr := t.attempt(ctx)
		if runErr == nil {
			return nil
		}
		if !ingesterr.IsTransient(runErr) {
			return backoff.Permanent(runErr)
		}
		logx.Debug("tentativa %d de download de %s falhou: %v", attempt, filepath.Base(t.URL), runErr)
		return runErr
	}, backoff.WithContext(bo, ctx))

	if err != nil {
		return err
	}
	return os.Rename(t.partPath(), t.finalPath())
}

// attempt performs one ranged-GET pass, continuing from the current
// size of the .part file.
func (t *Task) attempt(ctx context.Context) error {
	offset, err := partSize(t.partPath())
	if err != nil {
		return ingesterr.WrapStructural("download.Task: stat part file", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return ingesterr.WrapStructural("download.Task: build request", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	if t.UserAgent != nil {
		req.Header.Set("User-Agent", t.UserAgent())
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return ingesterr.WrapTransient("download.Task: "+t.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		offset = 0 // server ignored our Range and is sending the whole file
	case http.StatusPartialContent:
		// continuing as requested
	case http.StatusRequestedRangeNotSatisfiable:
		// the part file no longer lines up with the remote file; discard
		// it so the retry starts the download over from byte zero.
		if err := os.Remove(t.partPath()); err != nil && !os.IsNotExist(err) {
			return ingesterr.WrapStructural("download.Task: remove part file", err)
		}
		return ingesterr.WrapTransient("download.Task", fmt.Errorf("range not satisfiable for %s", t.URL))
	default:
		return ingesterr.WrapTransient("download.Task", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, t.URL))
	}

	return t.writeChunks(ctx, resp.Body, offset)
}

func (t *Task) writeChunks(ctx context.Context, body io.Reader, offset int64) error {
	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(t.partPath(), flags, 0o644)
	if err != nil {
		return ingesterr.WrapStructural("download.Task: open part file", err)
	}
	defer func() { _ = f.Close() }()

	chunkBytes := t.ChunkBytes
	if chunkBytes <= 0 {
		chunkBytes = 8 * 1024
	}
	chunkTimeout := t.ChunkTimeout
	if chunkTimeout <= 0 {
		chunkTimeout = 60 * time.Second
	}

	buf := make([]byte, chunkBytes)
	written := offset
	for {
		if err := ctx.Err(); err != nil {
			return ingesterr.WrapTransient("download.Task: context canceled", err)
		}

		n, readErr := readWithTimeout(body, buf, chunkTimeout)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return ingesterr.WrapStructural("download.Task: write chunk", werr)
			}
			written += int64(n)
			if t.OnProgress != nil {
				t.OnProgress(written, -1)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return ingesterr.WrapTransient("download.Task: read chunk", readErr)
		}
	}
}

// readWithTimeout reads once from r, treating a read that doesn't
// return within timeout as a transient error so the caller can retry
// rather than hang forever on a stalled connection.
func readWithTimeout(r io.Reader, buf []byte, timeout time.Duration) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := r.Read(buf)
		done <- result{n, err}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-time.After(timeout):
		return 0, fmt.Errorf("chunk read timed out after %s", timeout)
	}
}

func partSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// parseContentRangeTotal extracts the total size from a
// "Content-Range: bytes start-end/total" header, or -1 if absent/malformed.
func parseContentRangeTotal(header string) int64 {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return -1
	}
	total, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return total
}
