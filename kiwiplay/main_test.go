package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/store"
)

func TestRunPrintsChain(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"testdata/sine.yaml"}, &out))
	assert.Equal(t, "  0  osc~ 440 (1)\n  1  *~ 0.2 (2)\n  2  dac~ 1 2 (3)\n", out.String())
}

func TestReadPatchWrapsBareDictionaries(t *testing.T) {
	d, err := readPatch([]string{"testdata/sine.yaml"}, nil)
	require.NoError(t, err)
	sub, ok := atom.DictOf(d[atom.Patcher])
	require.True(t, ok)
	objects, _ := atom.VectorOf(sub[atom.Objects])
	assert.Len(t, objects, 3)

	_, err = readPatch(nil, nil)
	assert.Error(t, err)
	_, err = readPatch([]string{"testdata/missing.yaml"}, nil)
	assert.Error(t, err)
}

func TestReadPatchFromLibrary(t *testing.T) {
	lib, err := store.Open(filepath.Join(t.TempDir(), "kiwi.db"))
	require.NoError(t, err)
	defer lib.Close()
	require.NoError(t, lib.Save("empty", atom.Dict{atom.Objects: atom.Vector{}}))

	*loadName = "empty"
	defer func() { *loadName = "" }()
	d, err := readPatch(nil, lib)
	require.NoError(t, err)
	assert.Contains(t, d, atom.Patcher)

	*loadName = "missing"
	_, err = readPatch(nil, lib)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
