// Package ckptedit rewrites container checkpoint archives so a checkpointed
// container can be restored on a host with a different IP address.
//
// The archive is processed in a single streaming pass: entries are copied
// through unmodified except for three well-known paths, whose content is
// patched before being re-emitted with a recomputed header. The original
// file is only replaced after the whole pass succeeds.
//
//   - checkpoint/files.img: CRIU socket-state records bound to a specific
//     IPv4 address are rewritten to the wildcard address, round-tripped
//     through the external crit decode/encode tool.
//   - network.status: interface addresses are rewritten to the target IP,
//     keeping each entry's prefix length.
//   - config.dump: the staticIP field and any "--ip <addr>" pair in the
//     captured create command are rewritten to the target IP.
//
// # Quick Start
//
//	e := ckptedit.New(ckptedit.WithLogger(logger))
//	res, err := e.Rewrite(ctx, "checkpoint.tar.gz", "10.1.1.9")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.SocketsPatched, res.Digest)
//
// Plain tar, gzip and zstd archives are handled transparently; the output
// uses the same compression as the input.
//
// The binary image codec is an injectable collaborator (see the crit
// subpackage), so tests can substitute fixture documents for the external
// tool.
package ckptedit
