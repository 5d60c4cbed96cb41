// util/resources.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// OpenResource opens the given file for reading; if it's zstd compressed
// (has a .zst extension), the returned reader handles decompression
// transparently.
func OpenResource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) != ".zst" {
		return f, nil
	}

	zr, err := zstd.NewReader(bufio.NewReader(f), zstd.WithDecoderConcurrency(0))
	if err != nil {
		f.Close()
		return nil, err
	}
	return zstdReadCloser{Decoder: zr, f: f}, nil
}

// ReadResource returns the (decompressed, if need be) contents of the file.
func ReadResource(path string) ([]byte, error) {
	r, err := OpenResource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// ResourceBaseName returns the file name without its directory and
// without any .zst and format extensions, e.g. "EGKK" for
// "sids/EGKK.json.zst".
func ResourceBaseName(path string) string {
	base := filepath.Base(path)
	if filepath.Ext(base) == ".zst" {
		base = base[:len(base)-len(".zst")]
	}
	return base[:len(base)-len(filepath.Ext(base))]
}
