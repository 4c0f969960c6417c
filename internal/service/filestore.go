package service

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxImageSize = 10 << 20 // 10MB

var (
	// ErrEmptyImage is returned for zero-length uploads.
	ErrEmptyImage = errors.New("image is empty")
	// ErrNotAnImage is returned when the sniffed content type is not jpeg/png.
	ErrNotAnImage = errors.New("file is not a jpeg or png image")
	// ErrImageTooLarge is returned for uploads over the size cap.
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

// FileStore validates and persists uploaded images under a root
// directory, returning paths relative to that root.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// SaveEmployeeImage stores a face or signature image under
// {sanitizedName}_{ddMMyyyy}/{kind}/ and returns the relative path.
func (f *FileStore) SaveEmployeeImage(name, kind string, data []byte) (string, error) {
	if err := validateImage(data); err != nil {
		return "", err
	}

	dir := filepath.Join(sanitizeName(name)+"_"+time.Now().Format("02012006"), kind)
	return f.write(dir, data)
}

// SaveAttendanceImage stores an attendance image flat under the root
// with a collision-resistant random filename.
func (f *FileStore) SaveAttendanceImage(data []byte) (string, error) {
	if err := validateImage(data); err != nil {
		return "", err
	}
	return f.write("", data)
}

// Remove deletes a previously saved image by its relative path. A path
// that is already gone is not an error.
func (f *FileStore) Remove(rel string) error {
	err := os.Remove(filepath.Join(f.root, rel))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (f *FileStore) write(dir string, data []byte) (string, error) {
	abs := filepath.Join(f.root, dir)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.NewString() + extensionFor(data)
	if err := os.WriteFile(filepath.Join(abs, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return filepath.Join(dir, filename), nil
}

func validateImage(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}
	if len(data) > maxImageSize {
		return ErrImageTooLarge
	}
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
		return nil
	}
	return ErrNotAnImage
}

func extensionFor(data []byte) string {
	if http.DetectContentType(data) == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// sanitizeName strips path separators and whitespace so uploaded names
// cannot escape the root or produce awkward directories.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "", "\\", "", "..", "", " ", "_")
	cleaned := replacer.Replace(strings.TrimSpace(name))
	if cleaned == "" {
		cleaned = "unnamed"
	}
	return cleaned
}
