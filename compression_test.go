package ckptedit

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00, 0x00}, CompressionGzip},
		{"zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, CompressionZstd},
		{"tar", []byte("ustar blocks....."), CompressionNone},
		{"short", []byte{0x1f}, CompressionNone},
		{"empty", nil, CompressionNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := sniffCompression(bufio.NewReader(bytes.NewReader(tt.data)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("checkpoint archive data "), 1024)

	for _, comp := range []Compression{CompressionNone, CompressionGzip, CompressionZstd} {
		comp := comp
		t.Run(comp.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, err := newCompressWriter(comp, &buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			br := bufio.NewReader(bytes.NewReader(buf.Bytes()))
			sniffed, err := sniffCompression(br)
			require.NoError(t, err)
			assert.Equal(t, comp, sniffed)

			r, err := newDecompressReader(sniffed, br)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}
