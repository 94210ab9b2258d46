// Command edit-checkpoint rewrites a container checkpoint archive so the
// container can be restored on a host with a different IP address.
//
// Usage:
//
//	edit-checkpoint <checkpoint.tar> <old_addr> <new_addr> [image_name]
//
// Environment (all optional):
//
//	EDIT_CHECKPOINT_TIMING     emit per-stage timing diagnostics
//	EDIT_CHECKPOINT_TMPDIR     override the scratch directory
//	EDIT_CHECKPOINT_CRIT       path to the crit binary
//	EDIT_CHECKPOINT_LOG_LEVEL  logrus level (default info)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/stano45/ckptedit"
	"github.com/stano45/ckptedit/internal/logbridge"
)

func main() {
	args := os.Args[1:]
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: edit-checkpoint <checkpoint.tar> <old_addr> <new_addr> [image_name]")
		os.Exit(1)
	}
	archive, oldAddr, newAddr := args[0], args[1], args[2]
	// The optional image name is accepted for compatibility with callers but
	// not needed by the rewrite itself.

	if _, err := os.Stat(archive); err != nil {
		fatalf("%s does not exist", archive)
	}
	if oldAddr == "" || newAddr == "" {
		fatalf("old_addr and new_addr must not be empty")
	}
	if oldAddr == newAddr {
		fatalf("old_addr and new_addr must be different")
	}

	viper.SetEnvPrefix("EDIT_CHECKPOINT")
	viper.AutomaticEnv()

	log := newLogger(viper.GetString("log_level"))
	editor := ckptedit.New(
		ckptedit.WithLogger(slog.New(logbridge.New(log))),
		ckptedit.WithTiming(viper.GetString("timing") != ""),
		ckptedit.WithWorkDir(viper.GetString("tmpdir")),
		ckptedit.WithCritBinary(viper.GetString("crit")),
	)

	res, err := editor.Rewrite(context.Background(), archive, newAddr)
	if err != nil {
		fatalf("%v", err)
	}

	log.WithFields(logrus.Fields{
		"entries":         res.Entries,
		"sockets_patched": res.SocketsPatched,
		"digest":          res.Digest,
	}).Info("checkpoint archive rewritten")
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		DisableSorting:  true,
	})
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			fatalf("invalid log level %q: %v", level, err)
		}
		log.SetLevel(lvl)
	}
	return log
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
