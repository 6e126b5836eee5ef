package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orneryd/provgraph/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
actors:
  - aid: plus:a1
    name: A1
    type: user
objects:
  - oid: plus:o1
    type: data
    subtype: generic
    name: O1
    owner: plus:a1
    privilege: [PUBLIC]
  - oid: plus:o2
    type: data
    subtype: generic
    name: O2
edges:
  - from: plus:o1
    to: plus:o2
    type: input-to
`

func TestLoad_ReportsDocument(t *testing.T) {
	c := client.OpenMemory()
	defer c.Close()

	n, err := Load(c, []byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	ok, err := c.Exists("plus:o1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadFile_ReadsFromDisk(t *testing.T) {
	c := client.OpenMemory()
	defer c.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	n, err := LoadFile(c, path)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	c := client.OpenMemory()
	defer c.Close()

	_, err := Load(c, []byte("not: [valid"))
	assert.Error(t, err)
}
