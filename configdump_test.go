package ckptedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchConfigDump_StaticIPAndCreateCommand(t *testing.T) {
	t.Parallel()

	in := `{"staticIP":"192.168.12.2","createCommand":["podman","run","--ip","192.168.12.2","img"]}`
	out, err := patchConfigDump([]byte(in), "10.1.1.9")
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"staticIP":"10.1.1.9","createCommand":["podman","run","--ip","10.1.1.9","img"]}`,
		string(out))
}

func TestPatchConfigDump_StaticIPOnly(t *testing.T) {
	t.Parallel()

	out, err := patchConfigDump([]byte(`{"staticIP":"192.168.12.2","name":"web"}`), "10.1.1.9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"staticIP":"10.1.1.9","name":"web"}`, string(out))
}

func TestPatchConfigDump_CreateCommandOnly(t *testing.T) {
	t.Parallel()

	in := `{"createCommand":["podman","run","--ip","192.168.12.2","--ip","192.168.12.3","img"]}`
	out, err := patchConfigDump([]byte(in), "10.1.1.9")
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"createCommand":["podman","run","--ip","10.1.1.9","--ip","10.1.1.9","img"]}`,
		string(out))
}

func TestPatchConfigDump_FlagWithoutArgument(t *testing.T) {
	t.Parallel()

	in := `{"createCommand":["podman","run","--ip"]}`
	out, err := patchConfigDump([]byte(in), "10.1.1.9")
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestPatchConfigDump_MissingFieldsNoOp(t *testing.T) {
	t.Parallel()

	in := `{"id":"abcdef","runtime":"crun"}`
	out, err := patchConfigDump([]byte(in), "10.1.1.9")
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestPatchConfigDump_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := patchConfigDump([]byte(`[truncated`), "10.1.1.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config.dump")
}
