package featurize

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	perr "langid/internal/platform/errors"
)

// Options configures feature extraction. Immutable once an Extractor is
// built from it. Every knob here changes the bucket stream, so values must
// match whatever the model was trained with
type Options struct {
	// NumBuckets is the hash table size; bucket ids are in [0, NumBuckets)
	NumBuckets int `validate:"gt=0"`

	// MaxWordLength is the unit count (bytes in ASCII mode, codepoints in
	// Unicode mode) above which a word is trimmed to a prefix+suffix pair
	MaxWordLength int `validate:"gte=2"`

	// ChargramOrders lists the n-gram orders to extract, e.g. [1, 2, 3]
	ChargramOrders []int `validate:"dive,gt=0"`

	// RemapDigits maps every decimal digit to ASCII '0' before hashing
	RemapDigits bool

	// UnicodeAware counts codepoints instead of bytes and uses Unicode
	// classification for digits and case
	UnicodeAware bool

	// ExtractCaseFeature emits +1/-1 for an upper/lower first character
	ExtractCaseFeature bool

	// ExtractSelectionMask emits a dense signal for in-span tokens
	ExtractSelectionMask bool

	// RegexpFeatures are patterns contributing one dense +1/-1 each
	RegexpFeatures []string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Extractor produces sparse bucket ids and dense signals for single tokens.
// Safe for concurrent use; it holds no mutable state after construction
type Extractor struct {
	opts Options

	// nil slot = pattern failed to compile; it always contributes -1.0
	// without attempting a match
	patterns []*regexp.Regexp
}

// New validates opts, compiles the regex features and returns an Extractor.
// A pattern that fails to compile is kept as a degraded nil slot so the
// dense layout stays aligned with the trained model
func New(opts Options) (*Extractor, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, perr.Wrap(err, perr.KindInvalidArgument, "featurize: bad options")
	}
	e := &Extractor{
		opts:     opts,
		patterns: make([]*regexp.Regexp, len(opts.RegexpFeatures)),
	}
	for i, p := range opts.RegexpFeatures {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		e.patterns[i] = re
	}
	return e, nil
}

// Options returns a copy of the configuration the extractor was built with
func (e *Extractor) Options() Options { return e.opts }

// DenseWidth returns the number of dense features emitted per token
func (e *Extractor) DenseWidth() int {
	n := 0
	if e.opts.ExtractCaseFeature {
		n++
	}
	if e.opts.ExtractSelectionMask {
		n++
	}
	return n + len(e.patterns)
}

// Extract returns the feature vector for a single token. Extraction is
// total: malformed text degrades to whatever buckets its bytes hash to,
// it never fails
func (e *Extractor) Extract(tok Token) FeatureVector {
	return FeatureVector{
		SparseIndices: e.chargrams(tok),
		Dense:         e.denseFeatures(tok),
	}
}

// ExtractInto fills caller-provided buffers, failing only on nil outputs
func (e *Extractor) ExtractInto(tok Token, sparse *[]int, dense *[]float32) error {
	if sparse == nil || dense == nil {
		return perr.ExtractionInputf("nil output buffer")
	}
	fv := e.Extract(tok)
	*sparse = fv.SparseIndices
	*dense = fv.Dense
	return nil
}

// ExtractAll extracts every token, index-aligned with the input
func (e *Extractor) ExtractAll(toks []Token) []FeatureVector {
	out := make([]FeatureVector, len(toks))
	for i, tok := range toks {
		out[i] = e.Extract(tok)
	}
	return out
}

// ExtractAllInto fills caller-provided batch buffers atomically: on any
// failure the outputs are left untouched
func (e *Extractor) ExtractAllInto(toks []Token, sparse *[][]int, dense *[][]float32) error {
	if sparse == nil || dense == nil {
		return perr.ExtractionInputf("nil batch output buffer")
	}
	sp := make([][]int, len(toks))
	de := make([][]float32, len(toks))
	for i, tok := range toks {
		fv := e.Extract(tok)
		sp[i] = fv.SparseIndices
		de[i] = fv.Dense
	}
	*sparse = sp
	*dense = de
	return nil
}

func (e *Extractor) hash(s string) int { return Hash(s, e.opts.NumBuckets) }

func (e *Extractor) chargrams(tok Token) []int {
	if e.opts.UnicodeAware {
		return e.chargramsUnicode(tok)
	}
	return e.chargramsASCII(tok)
}

// chargramsASCII works byte-wise: every byte is one unit
func (e *Extractor) chargramsASCII(tok Token) []int {
	if tok.IsPadding {
		return []int{e.hash(padToken)}
	}

	word := tok.Value
	if e.opts.RemapDigits {
		word = remapDigitsASCII(word)
	}

	fw := anchorASCII(word, e.opts.MaxWordLength)

	out := make([]int, 0, len(e.opts.ChargramOrders)*len(fw))
	for _, k := range e.opts.ChargramOrders {
		if k == 1 {
			// order 1 excludes the ^ $ anchors
			for i := 1; i < len(fw)-1; i++ {
				out = append(out, e.hash(fw[i:i+1]))
			}
			continue
		}
		// higher orders span into the anchors; an incomplete trailing
		// window is dropped, never padded
		for i := 0; i+k <= len(fw); i++ {
			out = append(out, e.hash(fw[i:i+k]))
		}
	}
	return out
}

// chargramsUnicode counts codepoints as units. For pure-ASCII input it
// emits exactly the same bucket sequence as the byte-wise path
func (e *Extractor) chargramsUnicode(tok Token) []int {
	if tok.IsPadding {
		return []int{e.hash(padToken)}
	}

	word := []rune(tok.Value)
	if e.opts.RemapDigits {
		for i, r := range word {
			if unicode.IsDigit(r) {
				word[i] = '0'
			}
		}
	}

	fw := anchorRunes(word, e.opts.MaxWordLength)

	out := make([]int, 0, len(e.opts.ChargramOrders)*len(fw))
	for _, k := range e.opts.ChargramOrders {
		if k == 1 {
			for i := 1; i < len(fw)-1; i++ {
				out = append(out, e.hash(string(fw[i:i+1])))
			}
			continue
		}
		for i := 0; i+k <= len(fw); i++ {
			out = append(out, e.hash(string(fw[i:i+k])))
		}
	}
	return out
}

// anchorASCII wraps word with ^ $ anchors, trimming it first to a
// maxLen/2 prefix + \x01 + maxLen/2 suffix when it exceeds maxLen bytes
func anchorASCII(word string, maxLen int) string {
	if len(word) > maxLen {
		half := maxLen / 2
		return "^" + word[:half] + "\x01" + word[len(word)-half:] + "$"
	}
	return "^" + word + "$"
}

// anchorRunes is the codepoint-counting analogue of anchorASCII
func anchorRunes(word []rune, maxLen int) []rune {
	if len(word) > maxLen {
		half := maxLen / 2
		fw := make([]rune, 0, 2*half+3)
		fw = append(fw, '^')
		fw = append(fw, word[:half]...)
		fw = append(fw, '\x01')
		fw = append(fw, word[len(word)-half:]...)
		fw = append(fw, '$')
		return fw
	}
	fw := make([]rune, 0, len(word)+2)
	fw = append(fw, '^')
	fw = append(fw, word...)
	fw = append(fw, '$')
	return fw
}

// remapDigitsASCII maps bytes '0'..'9' to '0', copying only when needed
func remapDigitsASCII(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = '0'
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}

// denseFeatures appends the case, selection-mask and regex signals in the
// fixed order the network input layout expects
func (e *Extractor) denseFeatures(tok Token) []float32 {
	w := e.DenseWidth()
	if w == 0 {
		return nil
	}
	out := make([]float32, 0, w)

	if e.opts.ExtractCaseFeature {
		v := float32(-1.0)
		if tok.Value != "" {
			if e.opts.UnicodeAware {
				r, _ := utf8.DecodeRuneInString(tok.Value)
				if unicode.IsUpper(r) {
					v = 1.0
				}
			} else if tok.Value[0] >= 'A' && tok.Value[0] <= 'Z' {
				v = 1.0
			}
		}
		out = append(out, v)
	}

	if e.opts.ExtractSelectionMask {
		switch {
		case tok.IsInSpan:
			out = append(out, 1.0)
		case e.opts.UnicodeAware:
			// the -1.0 / 0.0 asymmetry between modes is what the shipped
			// model weights were trained against; do not unify it
			out = append(out, -1.0)
		default:
			out = append(out, 0.0)
		}
	}

	for _, re := range e.patterns {
		if re != nil && re.MatchString(tok.Value) {
			out = append(out, 1.0)
		} else {
			out = append(out, -1.0)
		}
	}
	return out
}
