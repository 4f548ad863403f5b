// Package featurize turns tokens into hashed character-n-gram features and
// dense float signals for the embedding network
package featurize

// Token is a contiguous span of text plus flags, immutable once produced by
// the tokenizer
type Token struct {
	// Value is the raw UTF-8 text of the token
	Value string

	// IsPadding marks a synthetic boundary token; padding tokens produce a
	// single reserved <PAD> bucket and nothing else
	IsPadding bool

	// IsInSpan reports whether the token falls inside a designated selection
	IsInSpan bool
}

// FeatureVector is the per-channel output of extraction: sparse bucket ids
// plus dense float signals. Dense order is load-bearing; it must match the
// input layout the network was trained with
type FeatureVector struct {
	SparseIndices []int
	Dense         []float32
}

// Pad returns a padding boundary token
func Pad() Token { return Token{IsPadding: true} }
