// internal/workers/fmv/store/comparables.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Comparable is a public athlete FMV document.
type Comparable struct {
	AthleteID    string    `json:"athlete_id"`
	Sport        string    `json:"sport"`
	Position     string    `json:"position,omitempty"`
	SchoolName   string    `json:"school_name,omitempty"`
	FMVScore     int       `json:"fmv_score"`
	FMVTier      string    `json:"fmv_tier"`
	IsPublic     bool      `json:"is_public_score"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// ComparableQuery selects public athletes in the same sport whose score is
// within Range of Score.
type ComparableQuery struct {
	AthleteID string
	Sport     string
	Score     int
	Range     int
	Limit     int
}

// ComparablesMapping is the index mapping the comparables query relies on.
// sport is a keyword so the term filter matches the lowercased value.
const ComparablesMapping = `{
	"mappings": {
		"properties": {
			"athlete_id":      {"type": "keyword"},
			"sport":           {"type": "keyword"},
			"position":        {"type": "keyword"},
			"school_name":     {"type": "text"},
			"fmv_score":       {"type": "integer"},
			"fmv_tier":        {"type": "keyword"},
			"is_public_score": {"type": "boolean"},
			"calculated_at":   {"type": "date"}
		}
	}
}`

// ComparablesIndex searches and maintains the public athlete index.
type ComparablesIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewComparablesIndex(client *elasticsearch.Client, index string) *ComparablesIndex {
	return &ComparablesIndex{client: client, index: index}
}

// BuildComparablesQuery returns the search body for q.
func BuildComparablesQuery(q ComparableQuery) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"is_public_score": true}},
		map[string]interface{}{"term": map[string]interface{}{"sport": strings.ToLower(q.Sport)}},
		map[string]interface{}{"range": map[string]interface{}{
			"fmv_score": map[string]interface{}{"gte": q.Score - q.Range, "lte": q.Score + q.Range},
		}},
	}
	query := map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": filters,
		},
	}
	if q.AthleteID != "" {
		query["bool"].(map[string]interface{})["must_not"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"athlete_id": q.AthleteID}},
		}
	}
	return map[string]interface{}{
		"size":  q.Limit,
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"fmv_score": map[string]interface{}{"order": "desc"}},
		},
	}
}

// Search returns up to q.Limit comparable athletes.
func (c *ComparablesIndex) Search(ctx context.Context, q ComparableQuery) ([]Comparable, error) {
	if q.Sport == "" || q.Limit <= 0 {
		return []Comparable{}, nil
	}
	body, err := json.Marshal(BuildComparablesQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encode comparables query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search %s: %s: %s", c.index, res.Status(), strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Comparable `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode comparables: %w", err)
	}

	out := make([]Comparable, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// Upsert writes doc under its athlete id.
func (c *ComparablesIndex) Upsert(ctx context.Context, doc Comparable) error {
	doc.Sport = strings.ToLower(doc.Sport)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode comparable: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.AthleteID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s/%s: %s", c.index, doc.AthleteID, res.Status())
	}
	return nil
}
