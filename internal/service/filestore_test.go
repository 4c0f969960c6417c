package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveEmployeeImage(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)

	rel, err := fs.SaveEmployeeImage("Alice Khan", "Face", pngBytes)
	if err != nil {
		t.Fatalf("SaveEmployeeImage: %v", err)
	}

	wantDir := filepath.Join("Alice_Khan_"+time.Now().Format("02012006"), "Face")
	if filepath.Dir(rel) != wantDir {
		t.Errorf("dir = %q, want %q", filepath.Dir(rel), wantDir)
	}
	if !strings.HasSuffix(rel, ".png") {
		t.Errorf("path = %q, want .png extension", rel)
	}

	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(data, pngBytes) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveEmployeeImage_SanitizesName(t *testing.T) {
	fs := newTestFileStore(t)

	rel, err := fs.SaveEmployeeImage("../../etc/passwd", "Face", pngBytes)
	if err != nil {
		t.Fatalf("SaveEmployeeImage: %v", err)
	}
	if strings.Contains(rel, "..") {
		t.Errorf("path %q still contains traversal", rel)
	}
}

func TestSaveAttendanceImage_Flat(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)

	rel, err := fs.SaveAttendanceImage(pngBytes)
	if err != nil {
		t.Fatalf("SaveAttendanceImage: %v", err)
	}
	if filepath.Dir(rel) != "." {
		t.Errorf("attendance image nested under %q, want root", filepath.Dir(rel))
	}
	if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestValidateImage(t *testing.T) {
	fs := newTestFileStore(t)

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyImage},
		{"text file", []byte("definitely not an image"), ErrNotAnImage},
		{"oversized", append(append([]byte{}, pngBytes...), make([]byte, maxImageSize)...), ErrImageTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := fs.SaveAttendanceImage(tc.data); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}
