package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DownloadAll_FetchesEveryURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data for " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ua := NewRotatingUserAgent([]string{"agent-a", "agent-b"})
	m := NewManager(srv.Client(), ua, 2, dir)

	urls := []string{srv.URL + "/Empresas0.zip", srv.URL + "/Empresas1.zip", srv.URL + "/Socios0.zip"}
	require.NoError(t, m.DownloadAll(context.Background(), urls))

	for _, name := range []string{"Empresas0.zip", "Empresas1.zip", "Socios0.zip"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
}

func TestSlotQueue_AcquireReleaseStaysWithinBounds(t *testing.T) {
	q := newSlotQueue(2)
	a := q.acquire()
	b := q.acquire()
	assert.NotEqual(t, a, b)
	assert.Less(t, a, 2)
	assert.Less(t, b, 2)

	q.release(a)
	c := q.acquire()
	assert.Equal(t, a, c)
}

func TestRotatingUserAgent_CyclesThroughAll(t *testing.T) {
	ua := NewRotatingUserAgent([]string{"one", "two"})
	assert.Equal(t, "one", ua.Next())
	assert.Equal(t, "two", ua.Next())
	assert.Equal(t, "one", ua.Next())
}
