package vectorstore

import (
	"context"
	"testing"
)

func TestMemoryGatewayQueryRanksBySimilarity(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx := context.Background()

	if err := g.Add(ctx, PrivateCollection(7), []string{
		"your pension contribution rate is 8 percent",
		"the weather today is sunny",
	}, []string{"c1", "c2"}, []Metadata{
		{"source": "plan.pdf", "chunk_index": 0, "user_id": 7},
		{"source": "plan.pdf", "chunk_index": 1, "user_id": 7},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := g.Query(ctx, PrivateCollection(7), "what is my contribution rate", 2, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(res.Documents))
	}
	for _, s := range res.Similarity {
		if s < 0 || s > 1 {
			t.Errorf("similarity %f out of [0,1]", s)
		}
	}
	if res.Similarity[0] < res.Similarity[1] {
		t.Errorf("results not ranked by similarity: %v", res.Similarity)
	}
}

func TestMemoryGatewayQueryRespectsWhere(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx := context.Background()

	if err := g.Add(ctx, SharedCollection, []string{"a", "b"}, []string{"1", "2"}, []Metadata{
		{"user_id": 1}, {"user_id": 2},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := g.Query(ctx, SharedCollection, "a", 5, Metadata{"user_id": 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0] != "b" {
		t.Fatalf("expected only user_id=2's chunk, got %+v", res.Documents)
	}
}

func TestMemoryGatewayNResultsCapped(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx := context.Background()
	if err := g.Add(ctx, SharedCollection, []string{"a", "b", "c"}, []string{"1", "2", "3"}, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	res, err := g.Query(ctx, SharedCollection, "a", 10, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Documents) != 3 {
		t.Fatalf("expected capped to 3 available chunks, got %d", len(res.Documents))
	}
}
