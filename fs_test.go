package ziparc

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultFS(t *testing.T) {
	t.Parallel()

	archive := readArchive(t, []Entry{
		TextEntry("docs/guide.txt", "read me"),
		RawEntry("bin/tool", []byte{0x7f, 0x45, 0x4c, 0x46}),
	})
	results := ExtractAll(ExtractConfig{
		IsText: func(name string) bool { return name == "docs/guide.txt" },
	}, archive, nil)

	rfs := NewResultFS(results)

	got, err := rfs.ReadFile("docs/guide.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("read me"), got)

	f, err := rfs.Open("bin/tool")
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "tool", info.Name())
	assert.Equal(t, int64(4), info.Size())
	assert.False(t, info.IsDir())

	_, err = rfs.Open("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = rfs.Open("../escape")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}
