// Package model deserializes language-identification model blobs.
// A blob is proto wire-format data carrying the embedding-network
// parameters, the known-language table and a handful of named scalar
// parameters; the layout is fixed by the models already in the field
package model

import (
	"math"
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"

	"langid/internal/core/nnet"
	perr "langid/internal/platform/errors"
)

func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }

// Field numbers are part of the trained-model wire convention
const (
	blobFieldNetwork   = 1
	blobFieldLanguages = 2
	blobFieldParameter = 3

	netFieldEmbeddings  = 1
	netFieldHidden      = 2
	netFieldHiddenBias  = 3
	netFieldSoftmax     = 4
	netFieldSoftmaxBias = 5

	matrixFieldRows   = 1
	matrixFieldCols   = 2
	matrixFieldValues = 3

	listFieldElement = 1

	paramFieldName  = 1
	paramFieldValue = 2
)

// Model is a fully parsed blob. All slices are copies; the source buffer
// may be unmapped or reused once Parse returns
type Model struct {
	Params     nnet.Params
	Languages  []string
	Parameters map[string]string
}

// Float returns the named parameter parsed as a float, or def when the
// parameter is absent or unparsable
func (m *Model) Float(name string, def float32) float32 {
	s, ok := m.Parameters[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// String returns the named parameter, or def when absent
func (m *Model) String(name, def string) string {
	if s, ok := m.Parameters[name]; ok {
		return s
	}
	return def
}

// Int returns the named parameter parsed as an int, or def when the
// parameter is absent or unparsable
func (m *Model) Int(name string, def int) int {
	s, ok := m.Parameters[name]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Bool returns the named parameter parsed as a bool-like ("1|true|yes"),
// or def when absent
func (m *Model) Bool(name string, def bool) bool {
	s, ok := m.Parameters[name]
	if !ok {
		return def
	}
	switch s {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// Parse decodes a model blob. It either returns a complete Model or an
// initialization error; there is no partially valid result
func Parse(blob []byte) (*Model, error) {
	m := &Model{Parameters: make(map[string]string)}
	var sawNetwork, sawLanguages bool

	b := blob
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, perr.Initf("model: bad field tag")
		}
		b = b[n:]

		switch num {
		case blobFieldNetwork:
			v, n := consumeMessage(b, typ)
			if n < 0 {
				return nil, perr.Initf("model: bad network field")
			}
			b = b[n:]
			params, err := parseNetwork(v)
			if err != nil {
				return nil, err
			}
			m.Params = params
			sawNetwork = true

		case blobFieldLanguages:
			v, n := consumeMessage(b, typ)
			if n < 0 {
				return nil, perr.Initf("model: bad language table field")
			}
			b = b[n:]
			langs, err := parseLanguages(v)
			if err != nil {
				return nil, err
			}
			m.Languages = langs
			sawLanguages = true

		case blobFieldParameter:
			v, n := consumeMessage(b, typ)
			if n < 0 {
				return nil, perr.Initf("model: bad named parameter field")
			}
			b = b[n:]
			name, value, err := parseNamedParameter(v)
			if err != nil {
				return nil, err
			}
			m.Parameters[name] = value

		default:
			// unknown fields are skipped for forward compatibility
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, perr.Initf("model: bad unknown field %d", num)
			}
			b = b[n:]
		}
	}

	if !sawNetwork {
		return nil, perr.Initf("model: no network parameters")
	}
	if !sawLanguages {
		return nil, perr.Initf("model: no language table")
	}
	if len(m.Languages) == 0 {
		return nil, perr.Initf("model: empty language table")
	}
	return m, nil
}

func consumeMessage(b []byte, typ protowire.Type) ([]byte, int) {
	if typ != protowire.BytesType {
		return nil, -1
	}
	return protowire.ConsumeBytes(b)
}

func parseNetwork(b []byte) (nnet.Params, error) {
	var p nnet.Params
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, perr.Initf("model: bad network tag")
		}
		b = b[n:]

		v, n := consumeMessage(b, typ)
		if n < 0 {
			return p, perr.Initf("model: network field %d is not a message", num)
		}
		b = b[n:]

		switch num {
		case netFieldEmbeddings, netFieldHidden, netFieldHiddenBias,
			netFieldSoftmax, netFieldSoftmaxBias:
			mtx, err := parseMatrix(v)
			if err != nil {
				return p, err
			}
			switch num {
			case netFieldEmbeddings:
				p.Embeddings = append(p.Embeddings, mtx)
			case netFieldHidden:
				p.Hidden = append(p.Hidden, mtx)
			case netFieldHiddenBias:
				p.HiddenBias = append(p.HiddenBias, mtx)
			case netFieldSoftmax:
				p.Softmax = mtx
			case netFieldSoftmaxBias:
				p.SoftmaxBias = mtx
			}
		}
	}
	return p, nil
}

func parseMatrix(b []byte) (nnet.Matrix, error) {
	var m nnet.Matrix
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, perr.Initf("model: bad matrix tag")
		}
		b = b[n:]

		switch num {
		case matrixFieldRows, matrixFieldCols:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 || typ != protowire.VarintType {
				return m, perr.Initf("model: bad matrix shape field")
			}
			b = b[n:]
			if num == matrixFieldRows {
				m.Rows = int(v)
			} else {
				m.Cols = int(v)
			}

		case matrixFieldValues:
			switch typ {
			case protowire.BytesType: // packed fixed32
				v, n := protowire.ConsumeBytes(b)
				if n < 0 {
					return m, perr.Initf("model: bad packed matrix values")
				}
				b = b[n:]
				if len(v)%4 != 0 {
					return m, perr.Initf("model: packed matrix values are not 4-byte aligned")
				}
				for len(v) > 0 {
					bits, n := protowire.ConsumeFixed32(v)
					if n < 0 {
						return m, perr.Initf("model: bad matrix value")
					}
					v = v[n:]
					m.Values = append(m.Values, float32FromBits(bits))
				}
			case protowire.Fixed32Type:
				bits, n := protowire.ConsumeFixed32(b)
				if n < 0 {
					return m, perr.Initf("model: bad matrix value")
				}
				b = b[n:]
				m.Values = append(m.Values, float32FromBits(bits))
			default:
				return m, perr.Initf("model: bad matrix values wire type")
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, perr.Initf("model: bad matrix field %d", num)
			}
			b = b[n:]
		}
	}

	if len(m.Values) != m.Rows*m.Cols {
		return m, perr.Initf("model: matrix declared %dx%d but carries %d values",
			m.Rows, m.Cols, len(m.Values))
	}
	return m, nil
}

// parseLanguages handles the double-wrapped language table: the outer list
// must hold exactly one element, itself a serialized list of the known
// language codes. The wrapping is a compatibility convention carried over
// from the original training pipeline
func parseLanguages(b []byte) ([]string, error) {
	outer, err := parseListOfStrings(b)
	if err != nil {
		return nil, err
	}
	if len(outer) != 1 {
		return nil, perr.Initf("model: language wrapper has %d elements, want exactly 1", len(outer))
	}
	inner, err := parseListOfStrings([]byte(outer[0]))
	if err != nil {
		return nil, err
	}
	return inner, nil
}

func parseListOfStrings(b []byte) ([]string, error) {
	var out []string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, perr.Initf("model: bad list tag")
		}
		b = b[n:]

		if num != listFieldElement {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, perr.Initf("model: bad list field %d", num)
			}
			b = b[n:]
			continue
		}
		v, n := consumeMessage(b, typ)
		if n < 0 {
			return nil, perr.Initf("model: bad list element")
		}
		b = b[n:]
		out = append(out, string(v))
	}
	return out, nil
}

func parseNamedParameter(b []byte) (name, value string, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", "", perr.Initf("model: bad parameter tag")
		}
		b = b[n:]

		switch num {
		case paramFieldName, paramFieldValue:
			v, n := consumeMessage(b, typ)
			if n < 0 {
				return "", "", perr.Initf("model: bad parameter field")
			}
			b = b[n:]
			if num == paramFieldName {
				name = string(v)
			} else {
				value = string(v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", "", perr.Initf("model: bad parameter field %d", num)
			}
			b = b[n:]
		}
	}
	if name == "" {
		return "", "", perr.Initf("model: named parameter without a name")
	}
	return name, value, nil
}
