// Package storage uploads user files to object storage and validates them
// beforehand.
package storage

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload limit.
const MaxFileSize = 10 << 20

var (
	ErrNoFile          = errors.New("no file selected")
	ErrFileTooLarge    = errors.New("file size exceeds 10MB limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUpload          = errors.New("upload failed")
)

const (
	TypePDF  = "application/pdf"
	TypeDoc  = "application/msword"
	TypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	TypePDF:      true,
	TypeDoc:      true,
	TypeDocx:     true,
}

// File is an in-memory upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Size() int { return len(f.Data) }

// IsImage reports whether the file has an image/* type.
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// OpenFile reads path and infers the content type from the extension,
// falling back to content sniffing. Files above MaxFileSize are rejected
// without being read.
func OpenFile(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}
	if st.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &File{
		Name:        filepath.Base(path),
		ContentType: detectType(path, data),
		Data:        data,
	}, nil
}

// officeTypes are missing from the built-in mime table.
var officeTypes = map[string]string{
	".doc":  TypeDoc,
	".docx": TypeDocx,
}

func detectType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := officeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mt, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// Validate checks presence, size and type of an upload.
func Validate(f *File) error {
	if f == nil || f.Size() == 0 {
		return ErrNoFile
	}
	if f.Size() > MaxFileSize {
		return ErrFileTooLarge
	}
	if !allowedTypes[f.ContentType] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, f.ContentType)
	}
	return nil
}

// ValidatePDF is Validate restricted to PDF documents.
func ValidatePDF(f *File) error {
	if err := Validate(f); err != nil {
		return err
	}
	if f.ContentType != TypePDF {
		return fmt.Errorf("%w: only PDF files are allowed", ErrUnsupportedType)
	}
	return nil
}
