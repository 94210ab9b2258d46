package ckptedit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchNetworkStatus_RewritesAddressKeepingPrefix(t *testing.T) {
	t.Parallel()

	in := `[{"name":"eth0","mac":"aa:bb:cc:dd:ee:ff","ips":[{"address":"192.168.12.2/24","gateway":"192.168.12.1"}]}]`
	out, err := patchNetworkStatus([]byte(in), "10.1.1.9")
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Len(t, doc, 1)

	ips := doc[0]["ips"].([]any)
	rec := ips[0].(map[string]any)
	assert.Equal(t, "10.1.1.9/24", rec["address"])
	assert.Equal(t, "192.168.12.1", rec["gateway"])
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", doc[0]["mac"])
}

func TestPatchNetworkStatus_DefaultPrefix(t *testing.T) {
	t.Parallel()

	out, err := patchNetworkStatus([]byte(`[{"ips":[{"address":"192.168.12.2"}]}]`), "10.1.1.9")
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	rec := doc[0]["ips"].([]any)[0].(map[string]any)
	assert.Equal(t, "10.1.1.9/24", rec["address"])
}

func TestPatchNetworkStatus_NonStandardPrefixKept(t *testing.T) {
	t.Parallel()

	out, err := patchNetworkStatus([]byte(`[{"ips":[{"address":"172.16.0.3/16"}]}]`), "10.1.1.9")
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	rec := doc[0]["ips"].([]any)[0].(map[string]any)
	assert.Equal(t, "10.1.1.9/16", rec["address"])
}

func TestPatchNetworkStatus_MultipleInterfaces(t *testing.T) {
	t.Parallel()

	in := `[
		{"name":"eth0","ips":[{"address":"192.168.12.2/24"},{"address":"192.168.12.3/24"}]},
		{"name":"lo"},
		{"name":"eth1","ips":[{"address":"172.16.0.3/12"}]}
	]`
	out, err := patchNetworkStatus([]byte(in), "10.1.1.9")
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))

	eth0 := doc[0]["ips"].([]any)
	assert.Equal(t, "10.1.1.9/24", eth0[0].(map[string]any)["address"])
	assert.Equal(t, "10.1.1.9/24", eth0[1].(map[string]any)["address"])

	_, hasIPs := doc[1]["ips"]
	assert.False(t, hasIPs)

	eth1 := doc[2]["ips"].([]any)
	assert.Equal(t, "10.1.1.9/12", eth1[0].(map[string]any)["address"])
}

func TestPatchNetworkStatus_EmptyDocument(t *testing.T) {
	t.Parallel()

	out, err := patchNetworkStatus([]byte(`[]`), "10.1.1.9")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestPatchNetworkStatus_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := patchNetworkStatus([]byte(`{not json`), "10.1.1.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse network.status")
}
