package ckptedit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stano45/ckptedit/crit"
)

// Socket-state record constants in the decoded image document. The address
// family may appear as a symbolic name or the AF_INET numeric code depending
// on the crit version.
const (
	recordTypeInetSocket = "INETSK"
	afInet               = 2
)

// patchImage round-trips the binary image through the codec and rewrites
// specifically-bound IPv4 sockets to the wildcard address. It returns the
// re-encoded image bytes and the number of records changed.
//
// The target address is deliberately not written into socket records: the
// restored container's address is assigned by the network layer at restore
// time, and a socket bound to a literal address the host does not hold would
// fail to restore. Binding to the wildcard works everywhere.
func (e *Editor) patchImage(ctx context.Context, codec crit.Codec, image []byte) ([]byte, int, error) {
	start := time.Now()
	decoded, err := codec.Decode(ctx, image)
	if err != nil {
		return nil, 0, err
	}
	e.stage("crit decode", start)

	start = time.Now()
	doc, err := decodeDocument(decoded)
	if err != nil {
		return nil, 0, fmt.Errorf("parse decoded image: %w", err)
	}
	count := patchImageDoc(doc)
	if count == 0 {
		e.log().Info("no specifically-bound IPv4 sockets in image, nothing to patch")
	} else {
		e.log().Info("patched socket bindings to wildcard", "count", count)
	}
	// Compact output keeps the encode input small.
	patched, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("serialize patched image: %w", err)
	}
	e.stage("json patch", start)

	start = time.Now()
	encoded, err := codec.Encode(ctx, patched)
	if err != nil {
		return nil, 0, err
	}
	e.stage("crit encode", start)
	return encoded, count, nil
}

// patchImageDoc walks the decoded image document and rewrites the src_addr of
// every IPv4 INETSK record bound to a specific address, keeping the element
// representation (numeric vs textual) of the original. Records already bound
// to the wildcard are left alone. Returns the number of records changed.
func patchImageDoc(doc any) int {
	root, ok := doc.(map[string]any)
	if !ok {
		return 0
	}
	entries, ok := root["entries"].([]any)
	if !ok {
		return 0
	}

	count := 0
	for _, entry := range entries {
		rec, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if typ, _ := rec["type"].(string); typ != recordTypeInetSocket {
			continue
		}
		isk, ok := rec["isk"].(map[string]any)
		if !ok {
			continue
		}
		if !isInet4Family(isk["family"]) {
			continue
		}
		addrs, ok := isk["src_addr"].([]any)
		if !ok || !hasSpecificAddr(addrs) {
			continue
		}
		if isNumericAddr(addrs) {
			isk["src_addr"] = []any{json.Number("0")}
		} else {
			isk["src_addr"] = []any{"0.0.0.0"}
		}
		count++
	}
	return count
}

func isInet4Family(v any) bool {
	switch f := v.(type) {
	case string:
		return f == "AF_INET" || f == "INET"
	case json.Number:
		n, err := f.Int64()
		return err == nil && n == afInet
	default:
		return false
	}
}

// hasSpecificAddr reports whether any element is a non-wildcard address, in
// either the integer (network-order uint32) or textual representation.
func hasSpecificAddr(addrs []any) bool {
	for _, a := range addrs {
		switch v := a.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil && n != 0 {
				return true
			}
		case string:
			if v != "" && v != "0.0.0.0" && v != "::" && v != "0" {
				return true
			}
		}
	}
	return false
}

// isNumericAddr reports whether the sequence uses the integer representation.
// An empty sequence defaults to numeric, matching what recent crit versions emit.
func isNumericAddr(addrs []any) bool {
	if len(addrs) == 0 {
		return true
	}
	_, ok := addrs[0].(json.Number)
	return ok
}
