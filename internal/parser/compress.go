package parser

import (
	"compress/gzip"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// openReader opens path and wraps it in a decompressor chosen by extension.
func openReader(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	_, ext := SplitCompression(path)
	switch ext {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		return gz, func() error {
			_ = gz.Close()
			return f.Close()
		}, nil
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		return xr, f.Close, nil
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		return dec, func() error {
			dec.Close()
			return f.Close()
		}, nil
	default:
		return f, f.Close, nil
	}
}

// readAll returns the decompressed content of path.
func readAll(path string) ([]byte, error) {
	r, closer, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	return io.ReadAll(r)
}
