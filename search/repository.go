// api/search/repository.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/mealcraft/api/model"
)

const recipeIndex = "recipes"

// Repository maintains the recipe search index.
type Repository interface {
	IndexRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, recipeID string) error
	SearchByName(ctx context.Context, name string) ([]*model.Recipe, error)
	SearchByRegion(ctx context.Context, region string) ([]*model.Recipe, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
}

func NewElasticsearchRepository(esURL string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient}, nil
}

// IndexRecipe indexes or reindexes one recipe document keyed by its ID.
func (r *ElasticsearchRepository) IndexRecipe(ctx context.Context, recipe *model.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      recipeIndex,
		DocumentID: recipe.ID,
		Body:       strings.NewReader(string(data)),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}

func (r *ElasticsearchRepository) DeleteRecipe(ctx context.Context, recipeID string) error {
	req := esapi.DeleteRequest{
		Index:      recipeIndex,
		DocumentID: recipeID,
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// A delete for a document that was never indexed is not an error.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("error deleting document: %s", res.String())
	}

	return nil
}

func (r *ElasticsearchRepository) SearchByName(ctx context.Context, name string) ([]*model.Recipe, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{"name": name},
		},
	}
	return r.search(ctx, query)
}

func (r *ElasticsearchRepository) SearchByRegion(ctx context.Context, region string) ([]*model.Recipe, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{"region": region},
		},
	}
	return r.search(ctx, query)
}

func (r *ElasticsearchRepository) search(ctx context.Context, query map[string]interface{}) ([]*model.Recipe, error) {
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(recipeIndex),
		r.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)

	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching documents: %s", res.String())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				Source model.Recipe `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}

	recipes := make([]*model.Recipe, len(body.Hits.Hits))
	for i := range body.Hits.Hits {
		recipe := body.Hits.Hits[i].Source
		recipes[i] = &recipe
	}

	return recipes, nil
}
