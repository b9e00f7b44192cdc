// api/search/repository_test.go
package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubES answers every search with the given body.
func stubES(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestSearchDecodesHits(t *testing.T) {
	server := stubES(t, `{
		"hits": {"hits": [
			{"_source": {"id": "r1", "name": "Tarte Tatin", "region": "EU"}},
			{"_source": {"id": "r2", "name": "Apple Pie", "region": "US"}}
		]}
	}`)
	defer server.Close()

	repo, err := NewElasticsearchRepository(server.URL)
	require.NoError(t, err)

	recipes, err := repo.SearchByName(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "r1", recipes[0].ID)
	assert.Equal(t, "Apple Pie", recipes[1].Name)
}

// An unexpected response shape degrades to an error or an empty result,
// never a panic.
func TestSearchToleratesUnexpectedBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "hits is a string", body: `{"hits": "nope"}`, wantErr: true},
		{name: "missing hits", body: `{}`, wantErr: false},
		{name: "null inner hits", body: `{"hits": {"hits": null}}`, wantErr: false},
		{name: "not json", body: `<html>gateway error</html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := stubES(t, tt.body)
			defer server.Close()

			repo, err := NewElasticsearchRepository(server.URL)
			require.NoError(t, err)

			recipes, err := repo.SearchByRegion(context.Background(), "EU")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, recipes)
		})
	}
}
