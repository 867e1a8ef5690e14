package fasta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ref.fasta")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSingle(t *testing.T) {
	path := writeTemp(t, ">ref description here\nACGT\nACGT\n")

	rec, err := ReadSingle(path)
	require.NoError(t, err)
	assert.Equal(t, "ref", rec.ID, "ID is the header up to the first whitespace")
	assert.Equal(t, "ACGTACGT", rec.Seq, "sequence lines are concatenated")
}

func TestReadSingle_FirstRecordOnly(t *testing.T) {
	path := writeTemp(t, ">one\nAC\n>two\nGT\n")

	rec, err := ReadSingle(path)
	require.NoError(t, err)
	assert.Equal(t, "one", rec.ID)
	assert.Equal(t, "AC", rec.Seq)
}

func TestReadSingle_NoHeader(t *testing.T) {
	path := writeTemp(t, "ACGT\n")
	_, err := ReadSingle(path)
	assert.Error(t, err)
}

func TestReadSingle_Empty(t *testing.T) {
	path := writeTemp(t, "")
	_, err := ReadSingle(path)
	assert.Error(t, err)
}

func TestReadSingle_MissingFile(t *testing.T) {
	_, err := ReadSingle(filepath.Join(t.TempDir(), "nope.fasta"))
	assert.Error(t, err)
}

func TestWriteRecord(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteRecord(&sb, "sample_frag3", "ACGT"))
	assert.Equal(t, ">sample_frag3\nACGT\n", sb.String())
}
