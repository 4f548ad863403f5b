package langid

import (
	"unicode"

	"langid/internal/core/featurize"
)

// A channel turns the token stream into one feature vector feeding one
// embedding table. The registry order is part of the model contract:
// embedding tables in the blob are stored in this order
type channel struct {
	name    string
	extract func(ex *featurize.Extractor, toks []featurize.Token) featurize.FeatureVector
}

var channels = []channel{
	{name: "chargrams", extract: chargramChannel},
	{name: "scripts", extract: scriptChannel},
}

// NumChannels is the number of embedding tables a model must carry
func NumChannels() int { return len(channels) }

// chargramChannel concatenates every token's hashed n-gram buckets and
// averages the per-token dense values column-wise
func chargramChannel(ex *featurize.Extractor, toks []featurize.Token) featurize.FeatureVector {
	var fv featurize.FeatureVector
	if w := ex.DenseWidth(); w > 0 {
		fv.Dense = make([]float32, w)
	}
	for _, tok := range toks {
		tv := ex.Extract(tok)
		fv.SparseIndices = append(fv.SparseIndices, tv.SparseIndices...)
		for i, v := range tv.Dense {
			fv.Dense[i] += v
		}
	}
	if len(toks) > 0 {
		for i := range fv.Dense {
			fv.Dense[i] /= float32(len(toks))
		}
	}
	return fv
}

// scripts lists the writing systems the script channel can report.
// Indices are stable; appending new scripts is forward compatible,
// reordering is not
var scripts = []*unicode.RangeTable{
	unicode.Latin,
	unicode.Cyrillic,
	unicode.Greek,
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Thai,
	unicode.Devanagari,
	unicode.Georgian,
	unicode.Armenian,
}

// NumScripts is the row count the scripts embedding table must have
func NumScripts() int { return len(scripts) }

// scriptChannel emits the index of every script that covers at least a
// quarter of the letters in the text. Mixed-script text fires several
// indices; text without letters fires none
func scriptChannel(_ *featurize.Extractor, toks []featurize.Token) featurize.FeatureVector {
	counts := make([]int, len(scripts))
	total := 0
	for _, tok := range toks {
		for _, r := range tok.Value {
			if !unicode.IsLetter(r) {
				continue
			}
			total++
			for i, rt := range scripts {
				if unicode.In(r, rt) {
					counts[i]++
					break
				}
			}
		}
	}

	var fv featurize.FeatureVector
	if total == 0 {
		return fv
	}
	for i, c := range counts {
		if 4*c >= total {
			fv.SparseIndices = append(fv.SparseIndices, i)
		}
	}
	return fv
}
