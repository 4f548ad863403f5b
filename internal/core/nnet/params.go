// Package nnet implements the forward pass of a small feed-forward
// embedding network over hashed sparse features and dense signals
package nnet

// Matrix is a row-major float32 matrix. Embedding tables are
// bucket-count x embedding-width; layer weights are outputs x inputs
type Matrix struct {
	Rows   int
	Cols   int
	Values []float32
}

// Row returns row i as a slice view; caller must not mutate it
func (m Matrix) Row(i int) []float32 {
	return m.Values[i*m.Cols : (i+1)*m.Cols]
}

// wellFormed reports whether the declared shape matches the backing slice
func (m Matrix) wellFormed() bool {
	return m.Rows >= 0 && m.Cols >= 0 && len(m.Values) == m.Rows*m.Cols
}

// Params holds the immutable parameters of an embedding network: one
// embedding table per sparse feature channel plus the affine layer stack.
// Owned exclusively by a Network after construction
type Params struct {
	// Embeddings has one table per sparse channel, in channel order
	Embeddings []Matrix

	// Hidden and HiddenBias are index-aligned hidden layers
	Hidden     []Matrix
	HiddenBias []Matrix

	// Softmax and SoftmaxBias form the final linear layer; Softmax.Rows is
	// the number of output labels
	Softmax     Matrix
	SoftmaxBias Matrix
}
