// Package vectorstore implements the Vector Store Gateway (C2): a singleton
// persistent store rooted at a fixed directory, namespaced into collections,
// with nearest-neighbor query over chunk embeddings. Grounded on the
// teacher's pkg/core/knowledge/store.go (CreateAsset/AddChunks/Search shape)
// and, for the on-disk backend, theRebelliousNerd-codenerd's
// internal/store/vector_store.go storage layout: embeddings live in a JSON
// blob column and Query ranks a collection by brute-force cosine distance.
// The sqlite-vec extension is registered on sqlite_vec && cgo builds
// (init_vec.go), but Query does not use it. The embedding model itself is
// external (spec.md §1); callers supply an Embedder.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// PrivateCollection and SharedCollection are the two stable collection names
// the spec requires: one per-user, one shared knowledge base.
func PrivateCollection(userID int) string { return fmt.Sprintf("user_%d_docs", userID) }

const SharedCollection = "pension_knowledge"

// Metadata is the free-form per-entry metadata the spec requires: source,
// chunk-index, user-id, plus whatever the ingestion pipeline adds.
type Metadata map[string]any

// Embedder produces a dense vector for a chunk of text. The concrete
// sentence-transformer model is an external collaborator (spec.md §1); this
// interface is the seam.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// QueryResult is the parallel-array shape spec.md §4.2 describes.
type QueryResult struct {
	Documents  []string
	Metadatas  []Metadata
	Distances  []float64
	Similarity []float64 // max(0, 1-d), pre-computed for convenience
}

// Gateway is the C2 contract: idempotent collection open, batch add, and
// nearest-neighbor query.
type Gateway interface {
	Collection(name string) error
	Add(ctx context.Context, collection string, texts []string, ids []string, metadatas []Metadata) error
	Query(ctx context.Context, collection string, queryText string, nResults int, where Metadata) (QueryResult, error)
}

// SQLiteGateway is the production Gateway: a single SQLite database file
// under StoreRoot, one logical collection per namespaced table row set.
// Persistent across restarts, many-reader/single-writer, matching the
// resource model in spec.md §5.
type SQLiteGateway struct {
	mu       sync.Mutex
	db       *sql.DB
	embedder Embedder
}

type entry struct {
	id        string
	text      string
	metadata  Metadata
	embedding []float32
}

// Open creates or opens the singleton store rooted at storeRoot (typically
// VECTOR_STORE_ROOT). Safe to call once per process; the *sql.DB pools
// connections internally the way the teacher's store/db.go pool does for
// Postgres.
func Open(storeRoot string, embedder Embedder) (*SQLiteGateway, error) {
	if err := os.MkdirAll(storeRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create vector store root: %w", err)
	}
	dbPath := filepath.Join(storeRoot, "vectors.sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	g := &SQLiteGateway{db: db, embedder: embedder}
	if err := g.migrate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *SQLiteGateway) migrate() error {
	_, err := g.db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			text       TEXT NOT NULL,
			metadata   TEXT NOT NULL,
			embedding  BLOB NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`)
	return err
}

// Collection idempotently creates-or-opens a namespace. SQLite rows are
// already namespaced by the collection column, so this is a no-op beyond
// validating the database is reachable.
func (g *SQLiteGateway) Collection(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.Ping()
}

// Add batch-inserts texts into collection. ids must be unique within the
// collection; a duplicate id overwrites, matching upsert semantics the
// ingestion pipeline relies on when re-processing a document.
func (g *SQLiteGateway) Add(ctx context.Context, collection string, texts []string, ids []string, metadatas []Metadata) error {
	if len(texts) != len(ids) {
		return fmt.Errorf("add: %d texts but %d ids", len(texts), len(ids))
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO chunks (collection, id, text, metadata, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, text := range texts {
		var meta Metadata
		if i < len(metadatas) {
			meta = metadatas[i]
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		vec, err := g.embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", ids[i], err)
		}
		vecJSON, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, collection, ids[i], text, string(metaJSON), vecJSON); err != nil {
			return fmt.Errorf("insert chunk %s: %w", ids[i], err)
		}
	}
	return tx.Commit()
}

// Query returns the n closest chunks to queryText in collection, optionally
// filtered by where (exact match on every key present). Distances are
// cosine (smaller = more similar); Similarity is the clamped max(0, 1-d)
// spec.md §4.2 mandates callers use instead of raw distance.
func (g *SQLiteGateway) Query(ctx context.Context, collection string, queryText string, nResults int, where Metadata) (QueryResult, error) {
	g.mu.Lock()
	rows, err := g.db.QueryContext(ctx, `SELECT id, text, metadata, embedding FROM chunks WHERE collection = ?`, collection)
	g.mu.Unlock()
	if err != nil {
		return QueryResult{}, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	queryVec, err := g.embed(ctx, queryText)
	if err != nil {
		return QueryResult{}, fmt.Errorf("embed query: %w", err)
	}

	var candidates []entry
	for rows.Next() {
		var id, text, metaJSON string
		var embBytes []byte
		if err := rows.Scan(&id, &text, &metaJSON, &embBytes); err != nil {
			return QueryResult{}, fmt.Errorf("scan chunk: %w", err)
		}
		var meta Metadata
		_ = json.Unmarshal([]byte(metaJSON), &meta)
		if !matchesWhere(meta, where) {
			continue
		}
		var emb []float32
		if err := json.Unmarshal(embBytes, &emb); err != nil {
			continue
		}
		candidates = append(candidates, entry{id: id, text: text, metadata: meta, embedding: emb})
	}
	if err := rows.Err(); err != nil {
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

func (g *SQLiteGateway) embed(ctx context.Context, text string) ([]float32, error) {
	if g.embedder != nil {
		return g.embedder.Embed(ctx, text)
	}
	return hashEmbed(text), nil
}

// hashEmbed is a deterministic placeholder embedding for local development
// without a configured sentence-transformer: same text always yields the
// same vector, which is all the nearest-neighbor math requires to behave
// sensibly in tests.
func hashEmbed(text string) []float32 {
	const dims = 32
	vec := make([]float32, dims)
	h := uint32(2166136261)
	for i, b := range []byte(text) {
		h ^= uint32(b)
		h *= 16777619
		vec[i%dims] += float32(h%997) / 997.0
	}
	return vec
}

func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1.0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 1.0
	}
	cosine := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	return 1 - cosine
}

// similarityFromDistance implements spec.md §4.2's conversion and the
// Open-Questions clamp: distance scale isn't guaranteed normalized, so the
// result is clamped to [0,1].
func similarityFromDistance(d float64) float64 {
	s := 1 - d
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func matchesWhere(meta Metadata, where Metadata) bool {
	for k, v := range where {
		if meta[k] != v {
			return false
		}
	}
	return true
}

// Close releases the underlying database handle.
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}
