package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFasta(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqs.fa")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFasta(t, ">s1 first\nACGT\nACGT\n>s2\nGGGG\n>s3\nacgtac\n")

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "s1", recs[0].ID)
	assert.Equal(t, "ACGTACGT", recs[0].Seq)
	assert.Equal(t, Record{ID: "s2", Seq: "GGGG"}, recs[1])
	assert.Equal(t, "ACGTAC", recs[2].Seq)
}

func TestLoad_UpperCases(t *testing.T) {
	path := writeFasta(t, ">mixed\nacgtACGT\n>lower\nacgtacgt\n")

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "ACGTACGT", recs[0].Seq)
	assert.Equal(t, recs[0].Seq, recs[1].Seq)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.fa"))
	assert.Error(t, err)
}

func TestSort(t *testing.T) {
	recs := []Record{
		{ID: "c", Seq: "TT"},
		{ID: "a", Seq: "AC"},
		{ID: "b", Seq: "AC"},
		{ID: "d", Seq: "AA"},
	}
	Sort(recs)

	assert.Equal(t, []string{"d", "a", "b", "c"}, []string{recs[0].ID, recs[1].ID, recs[2].ID, recs[3].ID})
	assert.True(t, Less(recs[0], recs[1]))
	assert.False(t, Less(recs[1], recs[2]))
}
