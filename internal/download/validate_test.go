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

func TestValidate_DetectsCompleteAndIncompleteFiles(t *testing.T) {
	const content = "0123456789"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empresas0.zip"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empresas1.zip"), []byte("short"), 0o644))

	urls := []string{srv.URL + "/Empresas0.zip", srv.URL + "/Empresas1.zip", srv.URL + "/Empresas2.zip"}
	statuses, err := Validate(context.Background(), srv.Client(), nil, urls, dir)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.True(t, statuses[0].Complete)
	assert.False(t, statuses[1].Complete)
	assert.False(t, statuses[2].Complete) // never downloaded

	missing := Missing(statuses)
	require.Len(t, missing, 2)
}
