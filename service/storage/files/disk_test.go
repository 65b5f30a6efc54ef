package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir)
	require.NoError(t, err)

	url, err := s.Save("photo.jpg", []byte("jpegdata"))
	require.NoError(t, err)
	require.Equal(t, "/uploads/photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpegdata", string(data))

	require.NoError(t, s.Delete(url))
	_, err = os.Stat(filepath.Join(dir, "photo.jpg"))
	require.True(t, os.IsNotExist(err))
}

func TestSaveSanitizesPath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir)
	require.NoError(t, err)

	// 路径穿越被压成纯文件名
	url, err := s.Save("../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, "/uploads/passwd", url)

	_, err = os.Stat(filepath.Join(dir, "passwd"))
	require.NoError(t, err)
}

func TestDeleteUnknownURL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir)
	require.NoError(t, err)

	require.Error(t, s.Delete("/elsewhere/file.jpg"))
}
