package nnet

import (
	"math"
	"testing"

	"langid/internal/core/featurize"
	perr "langid/internal/platform/errors"
)

// tinyParams builds a 1-channel network small enough to verify by hand:
// embedding table 4x2, one dense input, hidden ReLU layer of 2, 2 labels
func tinyParams() Params {
	return Params{
		Embeddings: []Matrix{
			{Rows: 4, Cols: 2, Values: []float32{
				1, 0,
				0, 0,
				0, 1,
				5, 5,
			}},
		},
		Hidden: []Matrix{
			{Rows: 2, Cols: 3, Values: []float32{
				1, 0, 1,
				0, -1, 0,
			}},
		},
		HiddenBias: []Matrix{
			{Rows: 2, Cols: 1, Values: []float32{0, 0}},
		},
		Softmax: Matrix{Rows: 2, Cols: 2, Values: []float32{
			1, 0,
			0, 1,
		}},
		SoftmaxBias: Matrix{Rows: 2, Cols: 1, Values: []float32{0.5, 0}},
	}
}

func mustNetwork(t *testing.T, p Params, denseWidths []int) *Network {
	t.Helper()
	n, err := New(p, denseWidths)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestForwardPassByHand(t *testing.T) {
	n := mustNetwork(t, tinyParams(), []int{1})

	scores, err := n.ComputeScores([]featurize.FeatureVector{
		{SparseIndices: []int{0, 2}, Dense: []float32{2}},
	})
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}

	// embed sum = (1,1); input = (1,1,2); hidden = relu(3,-1) = (3,0);
	// output = (3+0.5, 0)
	want := []float32{3.5, 0}
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	for i := range want {
		if math.Abs(float64(scores[i]-want[i])) > 1e-6 {
			t.Fatalf("scores = %v, want %v", scores, want)
		}
	}
}

func TestOutOfRangeBucketsAreSkipped(t *testing.T) {
	n := mustNetwork(t, tinyParams(), []int{1})

	clean, err := n.ComputeScores([]featurize.FeatureVector{
		{SparseIndices: []int{0, 2}, Dense: []float32{2}},
	})
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}
	degraded, err := n.ComputeScores([]featurize.FeatureVector{
		{SparseIndices: []int{0, -1, 2, 99}, Dense: []float32{2}},
	})
	if err != nil {
		t.Fatalf("ComputeScores with bad ids: %v", err)
	}
	for i := range clean {
		if clean[i] != degraded[i] {
			t.Fatalf("bad bucket ids must be no-ops: %v vs %v", clean, degraded)
		}
	}
}

func TestChannelCountMismatch(t *testing.T) {
	n := mustNetwork(t, tinyParams(), []int{1})

	_, err := n.ComputeScores(nil)
	if !perr.IsKind(err, perr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	_, err = n.ComputeScores([]featurize.FeatureVector{
		{SparseIndices: []int{0}, Dense: []float32{1, 2}}, // wrong dense width
	})
	if !perr.IsKind(err, perr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument for dense width, got %v", err)
	}
}

func TestNewRejectsShapeMismatches(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		widths []int
	}{
		{"dense widths vs channels", func(p *Params) {}, []int{1, 1}},
		{"layer input width", func(p *Params) { p.Hidden[0].Cols = 5; p.Hidden[0].Values = make([]float32, 10) }, []int{1}},
		{"bias length", func(p *Params) { p.HiddenBias[0] = Matrix{Rows: 3, Cols: 1, Values: make([]float32, 3)} }, []int{1}},
		{"malformed embedding", func(p *Params) { p.Embeddings[0].Values = p.Embeddings[0].Values[:5] }, []int{1}},
		{"hidden/bias count", func(p *Params) { p.HiddenBias = nil }, []int{1}},
		{"softmax width", func(p *Params) { p.Softmax = Matrix{Rows: 2, Cols: 7, Values: make([]float32, 14)} }, []int{1}},
		{"zero input", func(p *Params) {
			p.Embeddings = []Matrix{{Rows: 0, Cols: 0}}
			p.Hidden = nil
			p.HiddenBias = nil
		}, []int{0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tinyParams()
			tc.mutate(&p)
			if _, err := New(p, tc.widths); !perr.IsKind(err, perr.KindInitialization) {
				t.Fatalf("expected initialization failure, got %v", err)
			}
		})
	}
}

func TestNetworkAccessors(t *testing.T) {
	n := mustNetwork(t, tinyParams(), []int{1})
	if n.NumLabels() != 2 {
		t.Fatalf("NumLabels = %d, want 2", n.NumLabels())
	}
	if n.NumChannels() != 1 {
		t.Fatalf("NumChannels = %d, want 1", n.NumChannels())
	}
}
