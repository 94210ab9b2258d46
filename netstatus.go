package ckptedit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// defaultPrefixLen is used when an address carries no prefix length.
const defaultPrefixLen = "24"

// patchNetworkStatus rewrites every interface address in a network.status
// document to newAddr, keeping each entry's existing prefix length. An empty
// document is a no-op. Fields other than "address" are untouched.
func patchNetworkStatus(content []byte, newAddr string) ([]byte, error) {
	doc, err := decodeDocument(content)
	if err != nil {
		return nil, fmt.Errorf("parse network.status: %w", err)
	}

	if ifaces, ok := doc.([]any); ok {
		for _, entry := range ifaces {
			iface, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			ips, ok := iface["ips"].([]any)
			if !ok {
				continue
			}
			for _, ip := range ips {
				rec, ok := ip.(map[string]any)
				if !ok {
					continue
				}
				if _, present := rec["address"]; !present {
					continue
				}
				// address is "IP/prefix", e.g. "192.168.12.2/24"
				old, _ := rec["address"].(string)
				prefix := defaultPrefixLen
				if i := strings.Index(old, "/"); i >= 0 {
					prefix = old[i+1:]
				}
				rec["address"] = newAddr + "/" + prefix
			}
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize network.status: %w", err)
	}
	return out, nil
}
