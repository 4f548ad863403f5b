package model

import (
	"os"

	"github.com/edsrzf/mmap-go"

	perr "langid/internal/platform/errors"
)

// LoadFile memory-maps the model file and parses it. Parse copies
// everything it keeps, so the mapping is released before returning
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.KindInitialization, "model: open %s", path)
	}
	defer f.Close()

	return loadMapped(f)
}

// LoadFd parses a model from an already-open file, e.g. a descriptor
// handed over by the host application
func LoadFd(f *os.File) (*Model, error) {
	if f == nil {
		return nil, perr.Initf("model: nil file")
	}
	return loadMapped(f)
}

func loadMapped(f *os.File) (*Model, error) {
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, perr.Wrap(err, perr.KindInitialization, "model: mmap")
	}
	defer data.Unmap()

	return Parse(data)
}
