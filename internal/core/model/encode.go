package model

import (
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"langid/internal/core/nnet"
)

// Encode serializes params, languages and named parameters into the blob
// wire format understood by Parse. It is the tooling-side counterpart used
// to pack models; inference itself never writes blobs
func Encode(params nnet.Params, languages []string, parameters map[string]string) []byte {
	var out []byte

	out = protowire.AppendTag(out, blobFieldNetwork, protowire.BytesType)
	out = protowire.AppendBytes(out, encodeNetwork(params))

	out = protowire.AppendTag(out, blobFieldLanguages, protowire.BytesType)
	out = protowire.AppendBytes(out, encodeLanguageTable(languages))

	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = protowire.AppendTag(out, blobFieldParameter, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeNamedParameter(name, parameters[name]))
	}
	return out
}

func encodeNetwork(p nnet.Params) []byte {
	var out []byte
	for _, m := range p.Embeddings {
		out = protowire.AppendTag(out, netFieldEmbeddings, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeMatrix(m))
	}
	for _, m := range p.Hidden {
		out = protowire.AppendTag(out, netFieldHidden, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeMatrix(m))
	}
	for _, m := range p.HiddenBias {
		out = protowire.AppendTag(out, netFieldHiddenBias, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeMatrix(m))
	}
	out = protowire.AppendTag(out, netFieldSoftmax, protowire.BytesType)
	out = protowire.AppendBytes(out, encodeMatrix(p.Softmax))
	out = protowire.AppendTag(out, netFieldSoftmaxBias, protowire.BytesType)
	out = protowire.AppendBytes(out, encodeMatrix(p.SoftmaxBias))
	return out
}

func encodeMatrix(m nnet.Matrix) []byte {
	var out []byte
	out = protowire.AppendTag(out, matrixFieldRows, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(m.Rows))
	out = protowire.AppendTag(out, matrixFieldCols, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(m.Cols))

	packed := make([]byte, 0, 4*len(m.Values))
	for _, v := range m.Values {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	out = protowire.AppendTag(out, matrixFieldValues, protowire.BytesType)
	out = protowire.AppendBytes(out, packed)
	return out
}

// encodeLanguageTable produces the double-wrapped list: an outer list with
// one element holding the serialized inner list of codes
func encodeLanguageTable(languages []string) []byte {
	var inner []byte
	for _, lang := range languages {
		inner = protowire.AppendTag(inner, listFieldElement, protowire.BytesType)
		inner = protowire.AppendBytes(inner, []byte(lang))
	}

	var outer []byte
	outer = protowire.AppendTag(outer, listFieldElement, protowire.BytesType)
	outer = protowire.AppendBytes(outer, inner)
	return outer
}

func encodeNamedParameter(name, value string) []byte {
	var out []byte
	out = protowire.AppendTag(out, paramFieldName, protowire.BytesType)
	out = protowire.AppendBytes(out, []byte(name))
	out = protowire.AppendTag(out, paramFieldValue, protowire.BytesType)
	out = protowire.AppendBytes(out, []byte(value))
	return out
}
