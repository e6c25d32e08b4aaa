package uploads

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	s := New(t.TempDir())

	rel, err := s.Save("Ada@Example.com", 2, "notebook.ipynb", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com/task_2/notebook.ipynb", rel)

	b, err := os.ReadFile(filepath.Join(s.Root, "ada@example.com", "task_2", "notebook.ipynb"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))

	f, err := s.Open(rel)
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestSave_Replaces(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Save("ada@example.com", 1, "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	rel, err := s.Save("ada@example.com", 1, "a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	entries, err := os.ReadDir(filepath.Join(s.Root, "ada@example.com", "task_1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSave_StripsDirectories(t *testing.T) {
	s := New(t.TempDir())

	for _, name := range []string{"../../etc/passwd", `C:\Users\ada\passwd`, "/abs/passwd"} {
		rel, err := s.Save("ada@example.com", 1, name, strings.NewReader("x"))
		require.NoError(t, err, name)
		assert.Equal(t, "ada@example.com/task_1/passwd", rel, name)
	}
}

func TestSave_RejectsInvalidNames(t *testing.T) {
	s := New(t.TempDir())

	for _, name := range []string{"", "  ", "..", "dir/", ".hidden", "a\x00b"} {
		_, err := s.Save("ada@example.com", 1, name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "%q", name)
	}

	_, err := s.Save("../evil", 1, "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Save("ada@example.com", 0, "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestSave_TooLarge(t *testing.T) {
	s := New(t.TempDir())

	r := io.LimitReader(zeros{}, MaxFileSize+1)
	_, err := s.Save("ada@example.com", 1, "big.bin", r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, statErr := os.Stat(filepath.Join(s.Root, "ada@example.com", "task_1", "big.bin"))
	assert.True(t, os.IsNotExist(statErr))
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestRemoveLearner(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Save("ada@example.com", 1, "a.txt", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = s.Save("bob@example.com", 1, "b.txt", strings.NewReader("y"))
	require.NoError(t, err)

	require.NoError(t, s.RemoveLearner("ADA@example.com"))
	_, err = os.Stat(filepath.Join(s.Root, "ada@example.com"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.Root, "bob@example.com", "task_1", "b.txt"))
	assert.NoError(t, err)

	assert.NoError(t, s.RemoveLearner("nobody@example.com"))
	assert.ErrorIs(t, s.RemoveLearner(".."), ErrInvalidName)
}

func TestOpen_StaysInsideRoot(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Open("")
	assert.ErrorIs(t, err, ErrInvalidName)

	p, err := s.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "etc", "passwd"), p)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "", URL(""))
	assert.Equal(t, "/uploads/ada@example.com/task_1/my%20notes.txt", URL("ada@example.com/task_1/my notes.txt"))
}
