package ckptedit

import (
	"bytes"
	"encoding/json"
)

// decodeDocument parses JSON while preserving the numeric representation of
// values. Number preservation matters: crit emits socket addresses as either
// integers or strings depending on its version, and the re-encoded document
// must keep whichever form the input used.
func decodeDocument(content []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
