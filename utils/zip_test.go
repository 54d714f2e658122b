package utils

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipFiles(t *testing.T) {
	data, err := ZipFiles(map[string][]byte{
		"users.json":  []byte(`[{"id":"1"}]`),
		"quests.json": []byte(`[]`),
	})
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)

	contents := map[string]string{}
	for _, f := range reader.File {
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = string(raw)
	}
	assert.Equal(t, `[{"id":"1"}]`, contents["users.json"])
	assert.Equal(t, `[]`, contents["quests.json"])
}

func TestZipFiles_Empty(t *testing.T) {
	data, err := ZipFiles(nil)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Empty(t, reader.File)
}
