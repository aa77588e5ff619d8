package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalogsearch/internal/auth"
)

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "red saree", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "category", r.URL.Query().Get("kind"))
		assert.Empty(t, r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"hits":[],"total":0,"page":1}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"searchctl", "--addr", srv.URL, "search", "-n", "5", "--kind", "category", "red saree"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), `"total": 0`)
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"searchctl", "search"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one query")
}

func TestSuggestAndStats(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run([]string{"searchctl", "--addr", srv.URL, "suggest", "sar"}))
	require.NoError(t, newApp(&out).Run([]string{"searchctl", "--addr", srv.URL, "stats"}))

	assert.Equal(t, []string{"/api/v1/search/suggest?q=sar", "/api/v1/search/stats"}, paths)
}

func TestReindexCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"documents_indexed":3}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run([]string{"searchctl", "--addr", srv.URL, "reindex", "--token", "good"}))
	assert.Contains(t, out.String(), `"documents_indexed": 3`)

	err := newApp(&out).Run([]string{"searchctl", "--addr", srv.URL, "reindex", "--token", "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTokenCommand(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"searchctl", "token", "--secret", "s3cret", "--subject", "ops"})
	require.NoError(t, err)

	claims, err := auth.NewVerifier("s3cret").Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}
