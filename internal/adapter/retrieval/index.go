// Package retrieval serves knowledge-base context for answer generation. The
// index is built once at startup from the bank knowledge file; lookups run
// fully in process.
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/ports"
)

const (
	topK             = 3
	cosineThreshold  = 0.30
	lexicalThreshold = 0.20
	cacheTTL         = time.Hour
	cachePrefix      = "rag:"
)

// Document is one indexed knowledge-base entry.
type Document struct {
	ID     string
	Name   string
	Text   string
	vector []float64
	tokens map[string]struct{}
}

// Index answers Retrieve queries over the knowledge base. Scoring uses
// embedding cosine similarity when an embedder produced vectors at build
// time, token overlap otherwise.
type Index struct {
	docs     []Document
	embedder ports.Embedder
	embedded bool
	cache    ports.Cache
	log      *zap.Logger
}

// Option configures the index.
type Option func(*Index)

// WithEmbedder enables embedding-based scoring.
func WithEmbedder(e ports.Embedder) Option {
	return func(i *Index) { i.embedder = e }
}

// WithCache enables the query-context cache.
func WithCache(c ports.Cache) Option {
	return func(i *Index) { i.cache = c }
}

// NewIndex loads the knowledge file and builds the index. Embedding failures
// are logged and degrade the index to lexical scoring.
func NewIndex(ctx context.Context, path string, log *zap.Logger, opts ...Option) (*Index, error) {
	idx := &Index{log: log}
	for _, opt := range opts {
		opt(idx)
	}

	docs, err := loadDocuments(path)
	if err != nil {
		return nil, fmt.Errorf("retrieval: load knowledge base: %w", err)
	}
	idx.docs = docs

	if idx.embedder != nil && len(docs) > 0 {
		texts := make([]string, len(docs))
		for i, d := range docs {
			texts[i] = d.Text
		}
		vectors, err := idx.embedder.Embed(ctx, texts)
		if err != nil || len(vectors) != len(docs) {
			log.Warn("Embedding knowledge base failed, using lexical scoring", zap.Error(err))
		} else {
			for i := range idx.docs {
				idx.docs[i].vector = vectors[i]
			}
			idx.embedded = true
		}
	}

	log.Info("Knowledge index built",
		zap.String("path", path),
		zap.Int("documents", len(docs)),
		zap.Bool("embedded", idx.embedded),
	)
	return idx, nil
}

// Retrieve returns the concatenated top-scoring documents for the query, or
// "" when nothing scores above the threshold.
func (i *Index) Retrieve(ctx context.Context, query string) (string, error) {
	if query == "" || len(i.docs) == 0 {
		return "", nil
	}

	key := cacheKey(query)
	if i.cache != nil {
		if cached, err := i.cache.Get(ctx, key); err == nil {
			return cached, nil
		}
	}

	var result string
	if i.embedded {
		r, err := i.retrieveByEmbedding(ctx, query)
		if err != nil {
			// Degrade within the request rather than failing it.
			i.log.Warn("Embedding query failed, using lexical scoring", zap.Error(err))
			result = i.retrieveByOverlap(query)
		} else {
			result = r
		}
	} else {
		result = i.retrieveByOverlap(query)
	}

	if i.cache != nil && result != "" {
		if err := i.cache.Set(ctx, key, result, cacheTTL); err != nil {
			i.log.Warn("Context cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

type scoredDoc struct {
	doc   *Document
	score float64
}

func (i *Index) retrieveByEmbedding(ctx context.Context, query string) (string, error) {
	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("retrieval: expected 1 query vector, got %d", len(vectors))
	}
	qv := vectors[0]

	var scored []scoredDoc
	for idx := range i.docs {
		doc := &i.docs[idx]
		if doc.vector == nil {
			continue
		}
		if s := cosine(qv, doc.vector); s >= cosineThreshold {
			scored = append(scored, scoredDoc{doc: doc, score: s})
		}
	}
	return joinTop(scored), nil
}

func (i *Index) retrieveByOverlap(query string) string {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return ""
	}

	var scored []scoredDoc
	for idx := range i.docs {
		doc := &i.docs[idx]
		matched := 0
		for tok := range queryTokens {
			if _, ok := doc.tokens[tok]; ok {
				matched++
			}
		}
		score := float64(matched) / float64(len(queryTokens))
		if score >= lexicalThreshold {
			scored = append(scored, scoredDoc{doc: doc, score: score})
		}
	}
	return joinTop(scored)
}

func joinTop(scored []scoredDoc) string {
	if len(scored) == 0 {
		return ""
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	parts := make([]string, len(scored))
	for i, s := range scored {
		parts[i] = s.doc.Text
	}
	return strings.Join(parts, "\n\n")
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,!?:;\"'()")
		if f != "" {
			tokens[f] = struct{}{}
		}
	}
	return tokens
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// loadDocuments flattens every account entry of the knowledge file into one
// searchable text block. Unknown fields are kept, so richer knowledge files
// need no code change.
func loadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Accounts []map[string]interface{} `json:"accounts"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(file.Accounts))
	for _, entry := range file.Accounts {
		id, _ := entry["id"].(string)
		name, _ := entry["name"].(string)
		text := flatten(entry)
		if text == "" {
			continue
		}
		docs = append(docs, Document{
			ID:     id,
			Name:   name,
			Text:   text,
			tokens: tokenize(text),
		})
	}
	return docs, nil
}

func flatten(v interface{}) string {
	var parts []string
	collectStrings(v, &parts)
	return strings.Join(parts, " ")
}

func collectStrings(v interface{}, out *[]string) {
	switch val := v.(type) {
	case string:
		if val != "" {
			*out = append(*out, val)
		}
	case float64:
		*out = append(*out, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), "."))
	case bool:
		*out = append(*out, fmt.Sprintf("%t", val))
	case []interface{}:
		for _, item := range val {
			collectStrings(item, out)
		}
	case map[string]interface{}:
		// Sorted keys keep document text deterministic across loads.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "id" {
				continue
			}
			*out = append(*out, strings.ReplaceAll(k, "_", " "))
			collectStrings(val[k], out)
		}
	}
}
