// Package crit drives the external crit tool, which translates CRIU binary
// image files to and from a JSON document.
//
// The tool is the authority on the binary image format; nothing here parses
// or validates image bytes. A non-zero exit from either subcommand is fatal
// to the caller's operation and is never retried.
package crit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the codec binary looked up on PATH when no override is set.
const DefaultBinary = "crit"

// Codec converts a binary checkpoint image to and from its structured JSON
// representation. Implementations must treat both directions as all-or-nothing:
// on error the returned bytes are meaningless.
type Codec interface {
	// Decode converts binary image bytes to a JSON document.
	Decode(ctx context.Context, image []byte) ([]byte, error)

	// Encode converts a JSON document back to binary image bytes.
	Encode(ctx context.Context, doc []byte) ([]byte, error)
}

// Tool is a Codec backed by the crit command-line tool. Input and output are
// materialized as files in a scratch directory because crit operates on paths,
// not pipes.
type Tool struct {
	bin    string
	dir    string
	logger *slog.Logger
}

// Option configures a Tool.
type Option func(*Tool)

// WithBinary overrides the crit binary path.
func WithBinary(path string) Option {
	return func(t *Tool) {
		if path != "" {
			t.bin = path
		}
	}
}

// WithDir sets the scratch directory for exchange files.
// An empty value uses the system temp directory.
func WithDir(dir string) Option {
	return func(t *Tool) {
		t.dir = dir
	}
}

// WithLogger sets a logger for subprocess diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// NewTool creates a Tool with the given options.
func NewTool(opts ...Option) *Tool {
	t := &Tool{bin: DefaultBinary}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tool) log() *slog.Logger {
	if t.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t.logger
}

// Decode runs "crit decode" on the image bytes and returns the JSON document.
func (t *Tool) Decode(ctx context.Context, image []byte) ([]byte, error) {
	return t.run(ctx, "decode", image, "files.img", "decoded.json")
}

// Encode runs "crit encode" on the JSON document and returns the image bytes.
func (t *Tool) Encode(ctx context.Context, doc []byte) ([]byte, error) {
	return t.run(ctx, "encode", doc, "decoded.json", "files.img")
}

func (t *Tool) run(ctx context.Context, subcommand string, input []byte, inName, outName string) ([]byte, error) {
	scratch, err := os.MkdirTemp(t.dir, subcommand+"-*")
	if err != nil {
		return nil, fmt.Errorf("crit %s: create scratch dir: %w", subcommand, err)
	}
	defer os.RemoveAll(scratch)

	inPath := filepath.Join(scratch, inName)
	outPath := filepath.Join(scratch, outName)
	if err := os.WriteFile(inPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("crit %s: write input: %w", subcommand, err)
	}

	cmd := exec.CommandContext(ctx, t.bin, subcommand, "-i", inPath, "-o", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.log().Debug("running codec", "binary", t.bin, "subcommand", subcommand, "input_bytes", len(input))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("crit %s failed: %w: %s", subcommand, err, msg)
		}
		return nil, fmt.Errorf("crit %s failed: %w", subcommand, err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("crit %s: read output: %w", subcommand, err)
	}
	return out, nil
}
