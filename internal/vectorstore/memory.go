package vectorstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryGateway is an in-process Gateway for tests, mirroring the
// sync.RWMutex-guarded map shape of the teacher's
// pkg/core/knowledge/store.go MemoryStore.
type MemoryGateway struct {
	mu          sync.RWMutex
	collections map[string]map[string]entry
	embedder    Embedder
}

func NewMemoryGateway(embedder Embedder) *MemoryGateway {
	return &MemoryGateway{
		collections: make(map[string]map[string]entry),
		embedder:    embedder,
	}
}

func (m *MemoryGateway) Collection(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = make(map[string]entry)
	}
	return nil
}

func (m *MemoryGateway) Add(ctx context.Context, collection string, texts []string, ids []string, metadatas []Metadata) error {
	if err := m.Collection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, text := range texts {
		var meta Metadata
		if i < len(metadatas) {
			meta = metadatas[i]
		}
		vec, err := m.embed(ctx, text)
		if err != nil {
			return err
		}
		m.collections[collection][ids[i]] = entry{id: ids[i], text: text, metadata: meta, embedding: vec}
	}
	return nil
}

func (m *MemoryGateway) Query(ctx context.Context, collection string, queryText string, nResults int, where Metadata) (QueryResult, error) {
	m.mu.RLock()
	bucket := m.collections[collection]
	candidates := make([]entry, 0, len(bucket))
	for _, e := range bucket {
		if matchesWhere(e.metadata, where) {
			candidates = append(candidates, e)
		}
	}
	m.mu.RUnlock()

	queryVec, err := m.embed(ctx, queryText)
	if err != nil {
		return QueryResult{}, err
	}

	type scored struct {
		entry
		distance float64
	}
	scoredEntries := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		scoredEntries = append(scoredEntries, scored{entry: c, distance: cosineDistance(queryVec, c.embedding)})
	}
	sort.Slice(scoredEntries, func(i, j int) bool { return scoredEntries[i].distance < scoredEntries[j].distance })

	if nResults > len(scoredEntries) {
		nResults = len(scoredEntries)
	}

	out := QueryResult{}
	for i := 0; i < nResults; i++ {
		s := scoredEntries[i]
		out.Documents = append(out.Documents, s.text)
		out.Metadatas = append(out.Metadatas, s.metadata)
		out.Distances = append(out.Distances, s.distance)
		out.Similarity = append(out.Similarity, similarityFromDistance(s.distance))
	}
	return out, nil
}

func (m *MemoryGateway) embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedder != nil {
		return m.embedder.Embed(ctx, text)
	}
	return hashEmbed(text), nil
}
