package ckptedit

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/stano45/ckptedit/crit"
	"github.com/stano45/ckptedit/internal/pathutil"
	"github.com/stano45/ckptedit/internal/workdir"
)

// Archive entry paths recognized by Rewrite. Entry names are normalized to
// forward slashes before comparison.
const (
	// ImagePath is the CRIU file/socket-state image. Its absence is fatal.
	ImagePath = "checkpoint/files.img"

	// NetworkStatusPath holds the container's interface addresses.
	NetworkStatusPath = "network.status"

	// ConfigDumpPath holds the captured container configuration.
	ConfigDumpPath = "config.dump"
)

// DefaultMaxEntrySize caps how many bytes of a patched entry are held in
// memory. Entries that are only copied through are streamed and not subject
// to the cap.
const DefaultMaxEntrySize = 512 << 20

const (
	maxPrealloc = 64 << 20
	minPrealloc = 4 << 10
	bufSize     = 256 << 10
)

// Result summarizes a successful rewrite.
type Result struct {
	// Entries is the total number of archive entries processed.
	Entries int

	// SocketsPatched is the number of socket-state records rewritten to the
	// wildcard address. Zero is normal for workloads bound to 0.0.0.0.
	SocketsPatched int

	// NetworkStatusPatched and ConfigDumpPatched report whether the optional
	// entries were present and rewritten.
	NetworkStatusPatched bool
	ConfigDumpPatched    bool

	// Compression is the archive's outer compression, preserved on output.
	Compression Compression

	// Digest is the SHA-256 digest of the final archive bytes.
	Digest digest.Digest
}

// Editor rewrites checkpoint archives so they restore with a new address.
type Editor struct {
	codec        crit.Codec
	critBinary   string
	workDirBase  string
	maxEntrySize int64
	timing       bool
	logger       *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithCodec sets the image codec. By default the crit binary is executed;
// tests can inject a stub.
func WithCodec(c crit.Codec) Option {
	return func(e *Editor) {
		e.codec = c
	}
}

// WithCritBinary overrides the path of the crit binary used by the default
// codec. Ignored when WithCodec is set.
func WithCritBinary(path string) Option {
	return func(e *Editor) {
		e.critBinary = path
	}
}

// WithWorkDir sets the base directory for scratch files. An empty value
// prefers a RAM-backed location when available.
func WithWorkDir(base string) Option {
	return func(e *Editor) {
		e.workDirBase = base
	}
}

// WithMaxEntrySize limits how large a patched entry may be.
// Set limit to 0 to use DefaultMaxEntrySize.
func WithMaxEntrySize(limit int64) Option {
	return func(e *Editor) {
		e.maxEntrySize = limit
	}
}

// WithTiming enables per-stage timing diagnostics on the logger.
func WithTiming(enabled bool) Option {
	return func(e *Editor) {
		e.timing = enabled
	}
}

// WithLogger sets a logger for operator-facing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New creates an Editor with the given options.
func New(opts ...Option) *Editor {
	e := &Editor{maxEntrySize: DefaultMaxEntrySize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.logger
}

func (e *Editor) stage(name string, start time.Time) {
	if !e.timing {
		return
	}
	e.log().Info("stage timing", "stage", name, "elapsed", time.Since(start).Round(time.Millisecond))
}

// Rewrite streams the archive at path, patches the three known entries, and
// atomically replaces the original on success. All other entries are copied
// through byte-for-byte in their original order.
//
// On any error the original archive is left untouched: output goes to a
// sibling temporary file that is only renamed over the original after the
// whole pass succeeds.
func (e *Editor) Rewrite(ctx context.Context, path, newAddr string) (*Result, error) {
	if newAddr == "" {
		return nil, ErrEmptyAddress
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	wd, err := workdir.New(e.workDirBase)
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	defer wd.Close()

	codec := e.codec
	if codec == nil {
		codec = crit.NewTool(
			crit.WithBinary(e.critBinary),
			crit.WithDir(wd.Path()),
			crit.WithLogger(e.logger),
		)
	}

	br := bufio.NewReaderSize(in, bufSize)
	comp, err := sniffCompression(br)
	if err != nil {
		return nil, err
	}
	zr, err := newDecompressReader(comp, br)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := os.CreateTemp(filepath.Dir(path), ".ckptedit-*")
	if err != nil {
		return nil, fmt.Errorf("create output archive: %w", err)
	}
	outPath := out.Name()
	committed := false
	defer func() {
		out.Close()
		if !committed {
			os.Remove(outPath)
		}
	}()

	digester := digest.SHA256.Digester()
	bw := bufio.NewWriterSize(io.MultiWriter(out, digester.Hash()), bufSize)
	cw, err := newCompressWriter(comp, bw)
	if err != nil {
		return nil, err
	}
	tw := tar.NewWriter(cw)

	res := &Result{Compression: comp}
	if err := e.rewriteEntries(ctx, tar.NewReader(zr), tw, codec, newAddr, res); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(outPath, path); err != nil {
		return nil, fmt.Errorf("replace archive: %w", err)
	}
	committed = true

	res.Digest = digester.Digest()
	e.log().Info("rewrote checkpoint archive",
		"path", path, "entries", res.Entries, "compression", comp.String(), "digest", res.Digest)
	return res, nil
}

// rewriteEntries is the single pass over the archive: matched entries are
// materialized, patched and re-emitted with recomputed headers; everything
// else is streamed through unchanged.
func (e *Editor) rewriteEntries(ctx context.Context, tr *tar.Reader, tw *tar.Writer, codec crit.Codec, newAddr string, res *Result) error {
	total := time.Now()
	buf := make([]byte, 32*1024)
	foundImage := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read archive entry: %w", err)
		}
		res.Entries++

		switch pathutil.Normalize(hdr.Name) {
		case ImagePath:
			foundImage = true
			content, err := e.readEntry(tr, hdr)
			if err != nil {
				return err
			}
			e.stage("tar read", total)
			patched, count, err := e.patchImage(ctx, codec, content)
			if err != nil {
				return err
			}
			res.SocketsPatched += count
			if err := writeEntry(tw, hdr, patched); err != nil {
				return err
			}

		case NetworkStatusPath:
			content, err := e.readEntry(tr, hdr)
			if err != nil {
				return err
			}
			patched, err := patchNetworkStatus(content, newAddr)
			if err != nil {
				return err
			}
			if err := writeEntry(tw, hdr, patched); err != nil {
				return err
			}
			res.NetworkStatusPatched = true
			e.log().Info("patched network.status", "address", newAddr)

		case ConfigDumpPath:
			content, err := e.readEntry(tr, hdr)
			if err != nil {
				return err
			}
			patched, err := patchConfigDump(content, newAddr)
			if err != nil {
				return err
			}
			if err := writeEntry(tw, hdr, patched); err != nil {
				return err
			}
			res.ConfigDumpPatched = true
			e.log().Info("patched config.dump", "address", newAddr)

		default:
			h := *hdr
			if err := tw.WriteHeader(&h); err != nil {
				return fmt.Errorf("write header for %s: %w", hdr.Name, err)
			}
			if _, err := io.CopyBuffer(tw, tr, buf); err != nil {
				return fmt.Errorf("copy %s: %w", hdr.Name, err)
			}
		}
	}

	if !foundImage {
		return fmt.Errorf("%w: %s", ErrImageEntryMissing, ImagePath)
	}
	e.stage("total", total)
	return nil
}

// readEntry materializes one entry's content, bounded by the size limit.
func (e *Editor) readEntry(tr io.Reader, hdr *tar.Header) ([]byte, error) {
	limit := e.maxEntrySize
	if limit <= 0 {
		limit = DefaultMaxEntrySize
	}
	if hdr.Size > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrEntryTooLarge, hdr.Name, hdr.Size)
	}

	hint := min(hdr.Size, maxPrealloc)
	hint = max(hint, minPrealloc)
	buf := bytes.NewBuffer(make([]byte, 0, hint))
	if _, err := io.Copy(buf, tr); err != nil {
		return nil, fmt.Errorf("read %s: %w", hdr.Name, err)
	}
	return buf.Bytes(), nil
}

// writeEntry emits a patched entry, keeping the original header metadata but
// with the size updated to the new content length.
func writeEntry(tw *tar.Writer, hdr *tar.Header, content []byte) error {
	h := *hdr
	h.Size = int64(len(content))
	if err := tw.WriteHeader(&h); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", hdr.Name, err)
	}
	return nil
}
