package ckptedit

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the archive's outer compression layer.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// String returns a human-readable name for the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// sniffCompression inspects the stream's magic bytes without consuming them.
// Podman exports checkpoints as gzip tars by default; plain tar and zstd are
// also seen in the wild.
func sniffCompression(br *bufio.Reader) (Compression, error) {
	magic, err := br.Peek(4)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return CompressionNone, nil
		}
		return CompressionNone, fmt.Errorf("sniff compression: %w", err)
	}
	switch {
	case magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1]:
		return CompressionGzip, nil
	case magic[0] == zstdMagic[0] && magic[1] == zstdMagic[1] && magic[2] == zstdMagic[2] && magic[3] == zstdMagic[3]:
		return CompressionZstd, nil
	default:
		return CompressionNone, nil
	}
}

func newDecompressReader(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

func newCompressWriter(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		return enc, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
