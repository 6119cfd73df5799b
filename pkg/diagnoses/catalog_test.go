package diagnoses

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()

	d, ok := cat.Lookup("S62.5")
	require.True(t, ok)
	assert.Equal(t, "Fracture of thumb", d.Name)

	_, ok = cat.Lookup("X99.9")
	assert.False(t, ok)
}

func TestAllIsSortedByCode(t *testing.T) {
	all := DefaultCatalog().All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Code, all[i].Code)
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Diagnosis{{Code: "L20", Name: "a"}, {Code: " L20 ", Name: "b"}})
	assert.Error(t, err)

	_, err = NewCatalog([]Diagnosis{{Code: "", Name: "nameless"}})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cat, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog().Len(), cat.Len())
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diagnoses.yaml")
		content := "diagnoses:\n  - code: Z57.1\n    name: Occupational exposure to radiation\n  - code: N30.0\n    name: Acute cystitis\n    latin: Cystitis acuta\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cat, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())
		d, ok := cat.Lookup("N30.0")
		require.True(t, ok)
		assert.Equal(t, "Cystitis acuta", d.Latin)
	})

	t.Run("missing file falls back with error", func(t *testing.T) {
		cat, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
		assert.Equal(t, DefaultCatalog().Len(), cat.Len())
	})
}

func TestHTTPHandlerList(t *testing.T) {
	cat, err := NewCatalog([]Diagnosis{{Code: "L20", Name: "Atopic dermatitis"}, {Code: "F43.2", Name: "Adjustment disorders"}})
	require.NoError(t, err)

	router := mux.NewRouter()
	NewHTTPHandler(cat).Register(router.PathPrefix("/api").Subrouter())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnoses", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Diagnosis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []Diagnosis{{Code: "F43.2", Name: "Adjustment disorders"}, {Code: "L20", Name: "Atopic dermatitis"}}, got)
}

func TestHTTPHandlerGet(t *testing.T) {
	router := mux.NewRouter()
	NewHTTPHandler(DefaultCatalog()).Register(router.PathPrefix("/api").Subrouter())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnoses/S62.5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got Diagnosis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "S62.5", got.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnoses/X99.9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Diagnosis not found."}`, rec.Body.String())
}
