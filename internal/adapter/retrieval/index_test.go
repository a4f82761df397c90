package retrieval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/mocks"
)

const testKnowledge = `{
  "accounts": [
    {
      "id": "asaan_account",
      "name": "Asaan Account",
      "description": "A simplified current account for unbanked customers",
      "eligibility": "Any Pakistani citizen with a CNIC",
      "documents": ["CNIC copy", "one photograph"]
    },
    {
      "id": "asaan_remittance",
      "name": "Asaan Remittance Account",
      "description": "Account for receiving home remittance from abroad",
      "eligibility": "Remittance beneficiaries"
    }
  ]
}`

func writeKnowledge(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write knowledge file: %v", err)
	}
	return path
}

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float64{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func TestIndex_LexicalRetrieve(t *testing.T) {
	path := writeKnowledge(t, testKnowledge)
	idx, err := NewIndex(context.Background(), path, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := idx.Retrieve(context.Background(), "asaan account eligibility documents")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(got, "CNIC") {
		t.Errorf("expected eligibility context, got %q", got)
	}
}

func TestIndex_NoMatchReturnsEmpty(t *testing.T) {
	path := writeKnowledge(t, testKnowledge)
	idx, err := NewIndex(context.Background(), path, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := idx.Retrieve(context.Background(), "zzz qqq xxx")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestIndex_EmbeddingFailureDegradesToLexical(t *testing.T) {
	path := writeKnowledge(t, testKnowledge)
	embedder := &stubEmbedder{err: errors.New("quota exceeded")}

	idx, err := NewIndex(context.Background(), path, zap.NewNop(), WithEmbedder(embedder))
	if err != nil {
		t.Fatalf("embedding failure must not fail the build, got %v", err)
	}

	got, err := idx.Retrieve(context.Background(), "remittance account")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(got, "remittance") {
		t.Errorf("expected lexical match, got %q", got)
	}
}

func TestIndex_RanksByOverlap(t *testing.T) {
	path := writeKnowledge(t, testKnowledge)
	idx, err := NewIndex(context.Background(), path, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := idx.Retrieve(context.Background(), "receiving remittance from abroad")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// The remittance account matches more query tokens and must rank first.
	remIdx := strings.Index(got, "Asaan Remittance Account")
	if remIdx < 0 {
		t.Fatalf("expected remittance account in context, got %q", got)
	}
}

func TestIndex_CachesContext(t *testing.T) {
	path := writeKnowledge(t, testKnowledge)
	cache := mocks.NewMockCache()
	idx, err := NewIndex(context.Background(), path, zap.NewNop(), WithCache(cache))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first, err := idx.Retrieve(context.Background(), "asaan account documents")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first == "" {
		t.Fatal("expected a context hit")
	}

	// Second lookup must be served from the cache.
	second, err := idx.Retrieve(context.Background(), "asaan account documents")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second != first {
		t.Errorf("cached context differs: %q vs %q", second, first)
	}
}

func TestIndex_MissingFileFails(t *testing.T) {
	_, err := NewIndex(context.Background(), "/nonexistent/bank.json", zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing knowledge file")
	}
}
