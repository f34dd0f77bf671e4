package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddings answers each input with [len(text), 0, 0] and returns the
// items in reverse order to exercise index placement.
func fakeEmbeddings(t *testing.T, calls *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		*calls++
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		items := make([]string, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			items = append(items, fmt.Sprintf(`{"object":"embedding","index":%d,"embedding":[%d,0,0]}`, i, len(req.Input[i])))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"object":"list","model":%q,"data":[%s]}`, req.Model, strings.Join(items, ","))
	}))
}

func TestEmbedder_BatchesAndPreservesOrder(t *testing.T) {
	calls := 0
	srv := fakeEmbeddings(t, &calls)
	defer srv.Close()
	t.Setenv("HOLAMUNDO_EMBED_KEY", "sk-test")

	e, err := NewEmbedder(Config{BaseURL: srv.URL + "/v1", APIKeyEnv: "HOLAMUNDO_EMBED_KEY", BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, e.Dimension())

	vecs, err := e.Embed(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.InDelta(t, 1.0, math.Sqrt(float64(v[0]*v[0]+v[1]*v[1]+v[2]*v[2])), 1e-6)
	}
	assert.Equal(t, 3, e.Dimension())
	assert.Equal(t, "openai:text-embedding-3-small", e.Name())
}

func TestNewEmbedder_MissingKey(t *testing.T) {
	t.Setenv("HOLAMUNDO_EMBED_KEY", "")
	_, err := NewEmbedder(Config{APIKeyEnv: "HOLAMUNDO_EMBED_KEY"})
	assert.Error(t, err)
}

func TestEmbedder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"nope"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	t.Setenv("HOLAMUNDO_EMBED_KEY", "sk-test")

	e, err := NewEmbedder(Config{BaseURL: srv.URL + "/v1", APIKeyEnv: "HOLAMUNDO_EMBED_KEY"})
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), []string{"hola"})
	assert.Error(t, err)
}
