package nnet

import (
	"gonum.org/v1/gonum/mat"

	"langid/internal/core/featurize"
	perr "langid/internal/platform/errors"
)

// layer is one affine transform, optionally followed by ReLU
type layer struct {
	w    *mat.Dense
	b    *mat.VecDense
	relu bool
}

// Network runs the forward pass over immutable parameters. It exposes no
// mutation API and is safe to share across goroutines
type Network struct {
	embeddings  []Matrix
	denseWidths []int
	layers      []layer
	inputWidth  int
	numLabels   int
}

// New validates parameter shapes against the expected per-channel dense
// widths and builds a Network. Construction fails on any inconsistency;
// a nil Network is never returned alongside a nil error
func New(params Params, denseWidths []int) (*Network, error) {
	if len(denseWidths) != len(params.Embeddings) {
		return nil, perr.Initf("nnet: %d dense widths for %d channels",
			len(denseWidths), len(params.Embeddings))
	}

	inputWidth := 0
	for i, emb := range params.Embeddings {
		if !emb.wellFormed() {
			return nil, perr.Initf("nnet: embedding table %d is malformed (%dx%d, %d values)",
				i, emb.Rows, emb.Cols, len(emb.Values))
		}
		if denseWidths[i] < 0 {
			return nil, perr.Initf("nnet: negative dense width for channel %d", i)
		}
		inputWidth += emb.Cols + denseWidths[i]
	}
	if inputWidth == 0 {
		return nil, perr.Initf("nnet: zero-width network input")
	}

	if len(params.Hidden) != len(params.HiddenBias) {
		return nil, perr.Initf("nnet: %d hidden layers but %d biases",
			len(params.Hidden), len(params.HiddenBias))
	}

	n := &Network{
		embeddings:  params.Embeddings,
		denseWidths: append([]int(nil), denseWidths...),
		inputWidth:  inputWidth,
	}

	width := inputWidth
	for i := range params.Hidden {
		l, outWidth, err := buildLayer(params.Hidden[i], params.HiddenBias[i], width, true)
		if err != nil {
			return nil, perr.Wrapf(err, perr.KindInitialization, "nnet: hidden layer %d", i)
		}
		n.layers = append(n.layers, l)
		width = outWidth
	}

	final, outWidth, err := buildLayer(params.Softmax, params.SoftmaxBias, width, false)
	if err != nil {
		return nil, perr.Wrap(err, perr.KindInitialization, "nnet: output layer")
	}
	n.layers = append(n.layers, final)
	n.numLabels = outWidth

	return n, nil
}

// buildLayer checks one affine layer against its expected input width and
// converts it to float64 once, off the hot path
func buildLayer(w, b Matrix, inWidth int, relu bool) (layer, int, error) {
	if !w.wellFormed() || !b.wellFormed() {
		return layer{}, 0, perr.Initf("malformed weight or bias matrix")
	}
	if w.Cols != inWidth {
		return layer{}, 0, perr.Initf("layer input width %d does not match feature width %d", w.Cols, inWidth)
	}
	if b.Rows*b.Cols != w.Rows {
		return layer{}, 0, perr.Initf("bias length %d does not match %d outputs", b.Rows*b.Cols, w.Rows)
	}
	if w.Rows == 0 {
		return layer{}, 0, perr.Initf("layer has no outputs")
	}

	wd := mat.NewDense(w.Rows, w.Cols, toFloat64(w.Values))
	bd := mat.NewVecDense(w.Rows, toFloat64(b.Values))
	return layer{w: wd, b: bd, relu: relu}, w.Rows, nil
}

// NumLabels returns the size of the raw score vector
func (n *Network) NumLabels() int { return n.numLabels }

// NumChannels returns the number of sparse feature channels expected
func (n *Network) NumChannels() int { return len(n.embeddings) }

// ComputeScores runs the forward pass: per channel, sum the embedding rows
// addressed by the bucket ids, append the channel's dense values,
// concatenate all channels and push the result through the layer stack.
// The returned vector has one raw score per label
func (n *Network) ComputeScores(features []featurize.FeatureVector) ([]float32, error) {
	if len(features) != len(n.embeddings) {
		return nil, perr.InvalidArgf("nnet: got %d channels, network expects %d",
			len(features), len(n.embeddings))
	}

	input := make([]float64, 0, n.inputWidth)
	for i, fv := range features {
		emb := n.embeddings[i]

		sum := make([]float64, emb.Cols)
		for _, id := range fv.SparseIndices {
			if id < 0 || id >= emb.Rows {
				// degraded bucket lookup: skip, never fail the pass
				continue
			}
			row := emb.Row(id)
			for j, v := range row {
				sum[j] += float64(v)
			}
		}
		input = append(input, sum...)

		if len(fv.Dense) != n.denseWidths[i] {
			return nil, perr.InvalidArgf("nnet: channel %d has %d dense values, expected %d",
				i, len(fv.Dense), n.denseWidths[i])
		}
		for _, v := range fv.Dense {
			input = append(input, float64(v))
		}
	}

	x := mat.NewVecDense(n.inputWidth, input)
	for _, l := range n.layers {
		r, _ := l.w.Dims()
		y := mat.NewVecDense(r, nil)
		y.MulVec(l.w, x)
		y.AddVec(y, l.b)
		if l.relu {
			for i := 0; i < r; i++ {
				if y.AtVec(i) < 0 {
					y.SetVec(i, 0)
				}
			}
		}
		x = y
	}

	scores := make([]float32, x.Len())
	for i := range scores {
		scores[i] = float32(x.AtVec(i))
	}
	return scores, nil
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
