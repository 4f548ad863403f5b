package langid

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	core "langid/internal/core/langid"
	"langid/internal/core/model"
	"langid/internal/core/nnet"
	kit "langid/internal/platform/testkit"
)

// testBlob serializes a model whose softmax bias alone decides the
// distribution, so the expected probabilities are known up front
func testBlob(langs []string, probs []float32, params map[string]string) []byte {
	logits := make([]float32, len(probs))
	for i, p := range probs {
		logits[i] = float32(math.Log(float64(p)))
	}
	const inWidth = 4
	p := nnet.Params{
		Embeddings: []nnet.Matrix{
			{Rows: 16, Cols: 2, Values: make([]float32, 32)},
			{Rows: core.NumScripts(), Cols: 2, Values: make([]float32, 2*core.NumScripts())},
		},
		Softmax:     nnet.Matrix{Rows: len(logits), Cols: inWidth, Values: make([]float32, len(logits)*inWidth)},
		SoftmaxBias: nnet.Matrix{Rows: len(logits), Cols: 1, Values: logits},
	}
	return model.Encode(p, langs, params)
}

func TestNewFromBytes(t *testing.T) {
	blob := testBlob([]string{"en", "fr"}, []float32{0.9, 0.1},
		map[string]string{"version": "3"})

	h := NewFromBytes(blob)
	if !h.IsValid() {
		t.Fatal("handle must be valid")
	}
	if h.ModelVersion() != 3 {
		t.Fatalf("ModelVersion = %d, want 3", h.ModelVersion())
	}
	if got := h.FindLanguage("some text"); got != "en" {
		t.Fatalf("FindLanguage = %q, want en", got)
	}
	if langs := h.Languages(); len(langs) != 2 || langs[0] != "en" {
		t.Fatalf("Languages = %v", langs)
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.model")
	blob := testBlob([]string{"de", "nl"}, []float32{0.2, 0.8}, nil)
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	h := New(path)
	if !h.IsValid() {
		t.Fatal("handle must be valid")
	}
	if got := h.FindLanguage("tekst"); got != "nl" {
		t.Fatalf("FindLanguage = %q, want nl", got)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if h := NewFromFd(f); !h.IsValid() {
		t.Fatal("NewFromFd handle must be valid")
	}
}

func TestInvalidHandleNeverPanics(t *testing.T) {
	for name, h := range map[string]*LangId{
		"missing file": New(filepath.Join(t.TempDir(), "nope.model")),
		"garbage":      NewFromBytes([]byte{0xde, 0xad, 0xbe, 0xef}),
		"nil fd":       NewFromFd(nil),
	} {
		if h.IsValid() {
			t.Fatalf("%s: handle must be invalid", name)
		}
		if h.ModelVersion() != -1 {
			t.Fatalf("%s: ModelVersion = %d, want -1", name, h.ModelVersion())
		}
		kit.MustNotPanic(t, func() {
			if got := h.FindLanguage("bonjour"); got != "" {
				t.Fatalf("%s: FindLanguage = %q, want empty", name, got)
			}
			if preds := h.FindLanguages("bonjour"); len(preds) != 0 {
				t.Fatalf("%s: FindLanguages = %v, want empty", name, preds)
			}
			if probs := h.ScoreLanguages("bonjour"); probs != nil {
				t.Fatalf("%s: ScoreLanguages = %v, want nil", name, probs)
			}
		})
		h.SetDefaultLanguage("und")
		if got := h.FindLanguage("bonjour"); got != "und" {
			t.Fatalf("%s: FindLanguage = %q, want und", name, got)
		}
	}
}

func TestSettersChangeDecisions(t *testing.T) {
	h := NewFromBytes(testBlob([]string{"en", "fr"}, []float32{0.45, 0.55}, nil))
	if !h.IsValid() {
		t.Fatal("handle must be valid")
	}

	if got := h.FindLanguage("text"); got != "fr" {
		t.Fatalf("FindLanguage = %q, want fr", got)
	}
	h.SetProbabilityThreshold(0.9)
	h.SetDefaultLanguage("und")
	if got := h.FindLanguage("text"); got != "und" {
		t.Fatalf("FindLanguage = %q, want und after raising threshold", got)
	}
}

func TestFindLanguagesDistribution(t *testing.T) {
	h := NewFromBytes(testBlob([]string{"en", "fr"}, []float32{0.8, 0.2}, nil))

	preds := h.FindLanguages("text")
	if len(preds) != 2 {
		t.Fatalf("got %d predictions, want 2", len(preds))
	}
	var sum float32
	for _, p := range preds {
		sum += p.Probability
	}
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Fatalf("probabilities sum to %v", sum)
	}
	if preds[0].Language != "en" || preds[0].Probability < preds[1].Probability {
		t.Fatalf("unexpected predictions: %v", preds)
	}
}
