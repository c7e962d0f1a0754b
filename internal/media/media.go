// Package media holds files picked for upload: question and option images
// and section syllabi.
package media

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned before any network call when an upload has the
// wrong content type.
var ErrUnsupported = errors.New("unsupported media type")

// File is an upload payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFile builds a File, sniffing the content type from data and falling back
// to the file extension when sniffing is inconclusive.
func NewFile(name string, data []byte) File {
	return File{Name: filepath.Base(name), ContentType: detectContentType(name, data), Data: data}
}

// Open reads the file at path into a File. A leading ~/ refers to the home
// directory.
func Open(path string) (File, error) {
	path = strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	return NewFile(path, data), nil
}

// IsImage reports whether the file has an image/* content type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// IsPDF reports whether the file is a PDF document.
func (f File) IsPDF() bool {
	return f.ContentType == "application/pdf"
}

// RequireImage returns ErrUnsupported unless f is an image.
func RequireImage(f File) error {
	if !f.IsImage() {
		return fmt.Errorf("%w: %s is %q, want an image", ErrUnsupported, f.Name, f.ContentType)
	}
	return nil
}

// RequirePDF returns ErrUnsupported unless f is a PDF.
func RequirePDF(f File) error {
	if !f.IsPDF() {
		return fmt.Errorf("%w: %s is %q, want a PDF", ErrUnsupported, f.Name, f.ContentType)
	}
	return nil
}

func detectContentType(name string, data []byte) string {
	ct := mediaType(http.DetectContentType(data))
	if ct != "application/octet-stream" && ct != "text/plain" {
		return ct
	}
	if byExt := mediaType(mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))); byExt != "" {
		return byExt
	}
	return ct
}

// mediaType strips parameters such as charset.
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
