package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverer_AvailableMonths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
			<a href="2024-01/">2024-01/</a>
			<a href="2024-03/">2024-03/</a>
			<a href="2024-02/">2024-02/</a>
			<a href="../">../</a>
		`))
	}))
	defer srv.Close()

	d := NewDiscoverer(srv.URL, srv.Client(), nil)
	months, err := d.AvailableMonths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, months)
}

func TestDiscoverer_LatestMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="2024-01/">2024-01/</a><a href="2024-02/">2024-02/</a>`))
	}))
	defer srv.Close()

	d := NewDiscoverer(srv.URL, srv.Client(), nil)
	latest, err := d.LatestMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-02", latest)
}

func TestDiscoverer_URLsForMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="Empresas0.zip">Empresas0.zip</a><a href="Empresas1.zip">Empresas1.zip</a><a href="readme.txt">readme.txt</a>`))
	}))
	defer srv.Close()

	d := NewDiscoverer(srv.URL, srv.Client(), nil)
	urls, err := d.URLsForMonth(context.Background(), "2024-01")
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "Empresas0.zip")
}

func TestNormalizeMonth_AcceptsBothFormats(t *testing.T) {
	m1, err := normalizeMonth("2024-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", m1)

	m2, err := normalizeMonth("01/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", m2)

	_, err = normalizeMonth("garbage")
	assert.Error(t, err)
}
