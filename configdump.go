package ckptedit

import (
	"encoding/json"
	"fmt"
)

// ipFlag is the create-command flag whose argument carries the container's
// static address.
const ipFlag = "--ip"

// patchConfigDump rewrites the static address in a config.dump document to
// newAddr. Two independent rules apply: an existing top-level "staticIP"
// field is overwritten, and inside "createCommand" the argument following
// every "--ip" flag is overwritten. Missing fields are tolerated as no-ops.
func patchConfigDump(content []byte, newAddr string) ([]byte, error) {
	doc, err := decodeDocument(content)
	if err != nil {
		return nil, fmt.Errorf("parse config.dump: %w", err)
	}

	if obj, ok := doc.(map[string]any); ok {
		if _, present := obj["staticIP"]; present {
			obj["staticIP"] = newAddr
		}
		if cmd, ok := obj["createCommand"].([]any); ok {
			for i := 0; i+1 < len(cmd); i++ {
				if flag, ok := cmd[i].(string); ok && flag == ipFlag {
					cmd[i+1] = newAddr
				}
			}
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize config.dump: %w", err)
	}
	return out, nil
}
