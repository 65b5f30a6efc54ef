package files

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DiskStorage 本地磁盘文件存储。照片等静态文件落在 baseDir，
// 对外 URL 统一挂 /uploads 前缀。
type DiskStorage struct {
	baseDir string
}

func NewDiskStorage(baseDir string) (*DiskStorage, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &DiskStorage{baseDir: baseDir}, nil
}

func (s *DiskStorage) BaseDir() string { return s.baseDir }

// Save writes the file and returns its public URL path.
func (s *DiskStorage) Save(filename string, data []byte) (string, error) {
	name := sanitize(filename)
	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write file")
	}
	return "/uploads/" + name, nil
}

// Delete removes a stored file given its public URL path. Missing file is a no-op.
func (s *DiskStorage) Delete(fileURL string) error {
	if !strings.HasPrefix(fileURL, "/uploads/") {
		return errors.New("not an uploads url")
	}
	name := strings.TrimPrefix(fileURL, "/uploads/")
	if name == "" {
		return errors.New("empty filename")
	}
	err := os.Remove(filepath.Join(s.baseDir, sanitize(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// URL returns the public URL path for a stored filename.
func (s *DiskStorage) URL(filename string) string {
	return "/uploads/" + sanitize(filename)
}

// sanitize 防路径穿越：只保留文件名部分
func sanitize(name string) string {
	return filepath.Base(filepath.Clean(name))
}
