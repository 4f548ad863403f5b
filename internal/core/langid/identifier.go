package langid

import (
	"strconv"
	"strings"

	"langid/internal/core/featurize"
	"langid/internal/core/model"
	"langid/internal/core/nnet"
	perr "langid/internal/platform/errors"
)

// DefaultProbabilityThreshold gates FindLanguage when the model does not
// carry its own reliability_thresh parameter
const DefaultProbabilityThreshold = 0.50

// Prediction pairs a language code with its softmax probability
type Prediction struct {
	Language    string
	Probability float32
}

// Identifier runs the full pipeline for one loaded model. A failed
// construction still yields a usable handle that reports IsValid() ==
// false and returns the default language for every query.
//
// Queries are safe to run concurrently. The setters are plain field
// writes intended for single-threaded setup before queries start
type Identifier struct {
	extractor *featurize.Extractor
	network   *nnet.Network
	languages []string

	threshold       float32
	defaultLanguage string
	valid           bool
}

// New builds an Identifier from a parsed model. On error the returned
// handle is non-nil but invalid; the error says why
func New(m *model.Model) (*Identifier, error) {
	id := &Identifier{threshold: DefaultProbabilityThreshold}
	if m == nil {
		return id, perr.Initf("langid: nil model")
	}

	ex, err := featurize.New(extractorOptions(m))
	if err != nil {
		return id, perr.Wrap(err, perr.KindInitialization, "langid: extractor")
	}

	widths := make([]int, len(channels))
	widths[0] = ex.DenseWidth() // the chargram channel carries the dense block
	net, err := nnet.New(m.Params, widths)
	if err != nil {
		return id, perr.Wrap(err, perr.KindInitialization, "langid: network")
	}

	id.extractor = ex
	id.network = net
	id.languages = m.Languages
	id.threshold = m.Float("reliability_thresh", DefaultProbabilityThreshold)
	id.valid = true
	return id, nil
}

// extractorOptions reads the feature configuration the model was trained
// with from its named parameters. NumBuckets defaults to the chargram
// embedding table's row count so a bare model stays self-consistent
func extractorOptions(m *model.Model) featurize.Options {
	buckets := 0
	if len(m.Params.Embeddings) > 0 {
		buckets = m.Params.Embeddings[0].Rows
	}
	return featurize.Options{
		NumBuckets:     m.Int("num_buckets", buckets),
		MaxWordLength:  m.Int("max_word_length", 20),
		ChargramOrders: parseOrders(m.String("chargram_orders", "")),
		RemapDigits:    m.Bool("remap_digits", true),
		UnicodeAware:   m.Bool("unicode_aware", true),
	}
}

// parseOrders reads a comma-separated order list, e.g. "1,2,3". Anything
// unparsable falls back to the default orders
func parseOrders(s string) []int {
	def := []int{1, 2, 3}
	if s == "" {
		return def
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return def
		}
		out = append(out, n)
	}
	return out
}

// IsValid reports whether the identifier holds a usable model
func (id *Identifier) IsValid() bool { return id.valid }

// Languages returns a copy of the model's language table in label order
func (id *Identifier) Languages() []string {
	return append([]string(nil), id.languages...)
}

// ProbabilityThreshold returns the current decision threshold
func (id *Identifier) ProbabilityThreshold() float32 { return id.threshold }

// SetProbabilityThreshold overrides the decision threshold used by
// FindLanguage
func (id *Identifier) SetProbabilityThreshold(t float32) { id.threshold = t }

// DefaultLanguage returns the code reported for unreliable or unscorable
// text. It is empty unless SetDefaultLanguage was called
func (id *Identifier) DefaultLanguage() string { return id.defaultLanguage }

// SetDefaultLanguage sets the code reported for unreliable or unscorable
// text
func (id *Identifier) SetDefaultLanguage(lang string) { id.defaultLanguage = lang }

// ScoreLanguages returns the softmax distribution over the language
// table, index-aligned with Languages(). An invalid identifier returns
// nil
func (id *Identifier) ScoreLanguages(text string) []float32 {
	if !id.valid {
		return nil
	}
	toks := Tokenize(text)

	features := make([]featurize.FeatureVector, len(channels))
	for i, ch := range channels {
		features[i] = ch.extract(id.extractor, toks)
	}
	scores, err := id.network.ComputeScores(features)
	if err != nil {
		return nil
	}
	return nnet.Softmax(scores)
}

// FindLanguage returns the most probable language, or the default
// language when the top probability misses the threshold or the
// identifier is invalid
func (id *Identifier) FindLanguage(text string) string {
	probs := id.ScoreLanguages(text)
	label := nnet.ArgMax(probs)
	if label < 0 || probs[label] < id.threshold {
		return id.defaultLanguage
	}
	return id.languageForLabel(label)
}

// FindLanguages returns one prediction per known language, aligned with
// the model's language table. An invalid identifier returns an empty
// slice
func (id *Identifier) FindLanguages(text string) []Prediction {
	probs := id.ScoreLanguages(text)
	out := make([]Prediction, len(probs))
	for i, p := range probs {
		out[i] = Prediction{Language: id.languageForLabel(i), Probability: p}
	}
	return out
}

// languageForLabel tolerates a label outside the language table by
// falling back to the default language
func (id *Identifier) languageForLabel(label int) string {
	if label < 0 || label >= len(id.languages) {
		return id.defaultLanguage
	}
	return id.languages[label]
}
