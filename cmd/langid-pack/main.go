// Command langid-pack assembles a model blob from a JSON description.
// It is a training-pipeline tool; inference only ever reads blobs
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"langid/internal/core/model"
	"langid/internal/core/nnet"
)

type matrixFile struct {
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Values []float32 `json:"values"`
}

type networkFile struct {
	Embeddings  []matrixFile `json:"embeddings"`
	Hidden      []matrixFile `json:"hidden"`
	HiddenBias  []matrixFile `json:"hidden_bias"`
	Softmax     matrixFile   `json:"softmax"`
	SoftmaxBias matrixFile   `json:"softmax_bias"`
}

type modelFile struct {
	Version    int               `json:"version"`
	Languages  []string          `json:"languages"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Network    networkFile       `json:"network"`
}

func toMatrix(m matrixFile) nnet.Matrix {
	return nnet.Matrix{Rows: m.Rows, Cols: m.Cols, Values: m.Values}
}

func toMatrices(ms []matrixFile) []nnet.Matrix {
	out := make([]nnet.Matrix, len(ms))
	for i, m := range ms {
		out[i] = toMatrix(m)
	}
	return out
}

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	var (
		in      = flag.String("in", "", "path to the JSON model description")
		out     = flag.String("out", "", "output blob path or '-' for stdout")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *in == "" || *out == "" {
		_, _ = fmt.Fprintln(os.Stderr, "usage: langid-pack -in model.json -out model.blob")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*in)
	must(err)
	var mf modelFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		must(fmt.Errorf("decode %s: %w", *in, err))
	}

	params := nnet.Params{
		Embeddings:  toMatrices(mf.Network.Embeddings),
		Hidden:      toMatrices(mf.Network.Hidden),
		HiddenBias:  toMatrices(mf.Network.HiddenBias),
		Softmax:     toMatrix(mf.Network.Softmax),
		SoftmaxBias: toMatrix(mf.Network.SoftmaxBias),
	}
	named := make(map[string]string, len(mf.Parameters)+1)
	for k, v := range mf.Parameters {
		named[k] = v
	}
	if mf.Version != 0 {
		named["version"] = strconv.Itoa(mf.Version)
	}

	blob := model.Encode(params, mf.Languages, named)

	// round-trip before writing so a broken description fails here, not
	// at load time on device
	if _, err := model.Parse(blob); err != nil {
		must(fmt.Errorf("packed blob does not parse: %w", err))
	}

	if *out == "-" {
		_, err := os.Stdout.Write(blob)
		must(err)
		return
	}
	must(os.MkdirAll(filepath.Dir(*out), 0o755))
	must(os.WriteFile(*out, blob, 0o644))
	if *verbose {
		_, _ = fmt.Fprintf(os.Stderr, "wrote %s (%d bytes, %d languages)\n", *out, len(blob), len(mf.Languages))
	}
}
