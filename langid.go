// Package langid identifies the language of short text on device. A
// handle wraps a loaded embedding-network model; construction never
// fails outright, a broken model just yields an invalid handle that
// answers every query with the default language
package langid

import (
	"os"

	core "langid/internal/core/langid"
	"langid/internal/core/model"
	"langid/internal/platform/logger"
)

// Prediction pairs a language code with its softmax probability
type Prediction = core.Prediction

// DefaultProbabilityThreshold gates FindLanguage when the model does not
// carry its own reliability_thresh parameter
const DefaultProbabilityThreshold = core.DefaultProbabilityThreshold

// unknownModelVersion is reported by handles without a usable model
const unknownModelVersion = -1

// LangId is the public handle. Safe for concurrent queries; the setters
// are meant for single-threaded setup right after construction
type LangId struct {
	id      *core.Identifier
	version int
}

// New loads a model file and builds a handle
func New(path string) *LangId {
	m, err := model.LoadFile(path)
	return build(m, err)
}

// NewFromFd builds a handle from an already-open model file, e.g. a
// descriptor handed over by the host application
func NewFromFd(f *os.File) *LangId {
	m, err := model.LoadFd(f)
	return build(m, err)
}

// NewFromBytes builds a handle from an in-memory model blob
func NewFromBytes(blob []byte) *LangId {
	m, err := model.Parse(blob)
	return build(m, err)
}

func build(m *model.Model, err error) *LangId {
	log := logger.Named("langid")
	h := &LangId{version: unknownModelVersion}
	if err != nil {
		log.Error().Err(err).Msg("model load failed, handle is invalid")
		h.id, _ = core.New(nil)
		return h
	}

	id, err := core.New(m)
	if err != nil {
		log.Error().Err(err).Msg("identifier construction failed, handle is invalid")
	}
	h.id = id
	if id.IsValid() {
		h.version = m.Int("version", 0)
	}
	return h
}

// IsValid reports whether the handle holds a usable model
func (l *LangId) IsValid() bool { return l.id.IsValid() }

// ModelVersion returns the model's version parameter, or -1 when the
// handle is invalid
func (l *LangId) ModelVersion() int { return l.version }

// Languages returns the model's language table in label order
func (l *LangId) Languages() []string { return l.id.Languages() }

// SetProbabilityThreshold overrides the decision threshold used by
// FindLanguage
func (l *LangId) SetProbabilityThreshold(t float32) { l.id.SetProbabilityThreshold(t) }

// SetDefaultLanguage sets the code reported for unreliable or unscorable
// text. It is empty unless set
func (l *LangId) SetDefaultLanguage(lang string) { l.id.SetDefaultLanguage(lang) }

// FindLanguage returns the most probable language for text, or the
// default language when the top probability misses the threshold or the
// handle is invalid
func (l *LangId) FindLanguage(text string) string { return l.id.FindLanguage(text) }

// FindLanguages returns one prediction per known language, index-aligned
// with Languages(). An invalid handle returns an empty slice
func (l *LangId) FindLanguages(text string) []Prediction { return l.id.FindLanguages(text) }

// ScoreLanguages returns the raw softmax distribution over Languages(),
// or nil when the handle is invalid
func (l *LangId) ScoreLanguages(text string) []float32 { return l.id.ScoreLanguages(text) }
