package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Run_DownloadsFullFileWhenNoPartExists(t *testing.T) {
	const content = "the quick brown fox jumps over the lazy dog"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(content))
	}))
	defer srv.Close()

	dir := t.TempDir()
	task := &Task{URL: srv.URL + "/Empresas0.zip", DestDir: dir, HTTPClient: srv.Client(), MaxRetries: 1}
	require.NoError(t, task.Run(context.Background()))

	got, err := os.ReadFile(filepath.Join(dir, "Empresas0.zip"))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestTask_Run_ResumesFromExistingPartFile(t *testing.T) {
	const content = "the quick brown fox jumps over the lazy dog"
	const already = "the quick brown "

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.Header.Get("Range")
		require.Equal(t, "bytes="+strconv.Itoa(len(already))+"-", rng)
		w.Header().Set("Content-Range", "bytes "+strconv.Itoa(len(already))+"-"+strconv.Itoa(len(content)-1)+"/"+strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(content[len(already):]))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empresas0.zip.part"), []byte(already), 0o644))

	task := &Task{URL: srv.URL + "/Empresas0.zip", DestDir: dir, HTTPClient: srv.Client(), MaxRetries: 1}
	require.NoError(t, task.Run(context.Background()))

	got, err := os.ReadFile(filepath.Join(dir, "Empresas0.zip"))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestTask_Run_SkipsWhenFinalFileAlreadyExists(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empresas0.zip"), []byte("done"), 0o644))

	task := &Task{URL: srv.URL + "/Empresas0.zip", DestDir: dir, HTTPClient: srv.Client()}
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, 0, calls)
}

func TestTask_Run_RangeNotSatisfiableDiscardsPartAndRetries(t *testing.T) {
	const content = "the quick brown fox jumps over the lazy dog"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empresas0.zip.part"), []byte("stale part data, longer than the file itself"), 0o644))

	task := &Task{URL: srv.URL + "/Empresas0.zip", DestDir: dir, HTTPClient: srv.Client(), MaxRetries: 1}
	require.NoError(t, task.Run(context.Background()))

	got, err := os.ReadFile(filepath.Join(dir, "Empresas0.zip"))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestReadWithTimeout_TimesOutOnStalledReader(t *testing.T) {
	r := blockingReader{}
	_, err := readWithTimeout(r, make([]byte, 10), 10*time.Millisecond)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "timed out"))
}

type blockingReader struct{}

func (blockingReader) Read(_ []byte) (int, error) {
	select {}
}

func TestParseContentRangeTotal(t *testing.T) {
	assert.Equal(t, int64(1000), parseContentRangeTotal("bytes 0-99/1000"))
	assert.Equal(t, int64(-1), parseContentRangeTotal("garbage"))
}
