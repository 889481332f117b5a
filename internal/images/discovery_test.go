package images

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tokenprinter/internal/testutil"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.png", true},
		{"a.PNG", true},
		{"b.jpg", true},
		{"b.JpEg", true},
		{"c.bmp", true},
		{"d.gif", true},
		{"e.webp", false},
		{"e.tiff", false},
		{"notes.txt", false},
		{"png", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.path))
		})
	}
}

func TestEnumerate_FiltersByExtension(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.WriteFile(t, filepath.Join(dir, "a.PNG"), []byte("x"))
	testutil.WriteFile(t, filepath.Join(dir, "b.jpg"), []byte("x"))
	testutil.WriteFile(t, filepath.Join(dir, "c.gif"), []byte("x"))
	testutil.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))
	testutil.WriteFile(t, filepath.Join(dir, "image.webp"), []byte("x"))
	// directories are skipped even when the name looks like an image
	testutil.MkdirAll(t, filepath.Join(dir, "folder.png"))
	// nested images are not picked up
	testutil.WriteFile(t, filepath.Join(dir, "sub", "deep.png"), []byte("x"))

	files, err := Enumerate(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.gif"),
	}, files)
}

func TestEnumerate_FollowsSymlinks(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	target := filepath.Join(testutil.CreateTempDir(t), "real.png")
	testutil.WriteFile(t, target, []byte("x"))
	if err := os.Symlink(target, filepath.Join(dir, "link.png")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.png"), filepath.Join(dir, "dangling.png")))

	files, err := Enumerate(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "link.png")}, files)
}

func TestEnumerate_EmptyDir(t *testing.T) {
	files, err := Enumerate(testutil.CreateTempDir(t))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEnumerate_MissingDir(t *testing.T) {
	dir := filepath.Join(testutil.CreateTempDir(t), "absent")

	_, err := Enumerate(dir)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, dir, nf.Dir)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEnumerate_NotADirectory(t *testing.T) {
	file := filepath.Join(testutil.CreateTempDir(t), "a.png")
	testutil.WriteFile(t, file, []byte("x"))

	_, err := Enumerate(file)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestRows(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  [][]string
	}{
		{"empty", nil, nil},
		{"one", []string{"a"}, [][]string{{"a"}}},
		{"two", []string{"a", "b"}, [][]string{{"a", "b"}}},
		{"three", []string{"a", "b", "c"}, [][]string{{"a", "b"}, {"c"}}},
		{"five", []string{"a", "b", "c", "d", "e"}, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rows(tt.files))
		})
	}
}

func TestRows_DoNotAlias(t *testing.T) {
	files := []string{"a", "b", "c"}
	rows := Rows(files)

	rows[0] = append(rows[0], "x")
	assert.Equal(t, []string{"a", "b", "c"}, files)
}
