package sender

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

const (
	// MaxUploadSize is the maximum file size for Bot API uploads (50MB).
	// For larger files, use external storage and send a URL.
	MaxUploadSize = 50 * 1024 * 1024

	fallbackFileName    = "unnamed"
	fallbackContentType = "application/octet-stream"
)

// InputFile is a file payload for a file-valued parameter: raw bytes, an
// open byte stream, or a filesystem path. Use one of the constructors:
// FromPath, FromBytes, FromReader.
//
// FileName and MIME may be set explicitly; otherwise they are inferred.
// Filename inference order: explicit > path base name > stream name >
// "unnamed". MIME inference order: explicit > filename extension >
// application/octet-stream.
type InputFile struct {
	// Path is a filesystem path, opened when the request body is built.
	// An unreadable path fails the call before any network I/O.
	Path string

	// Reader provides file content for upload. Consumed once.
	Reader io.Reader

	// Data is in-memory file content.
	Data []byte

	// FileName overrides the inferred filename.
	FileName string

	// MIME overrides the inferred content type.
	MIME string
}

// FromPath creates an InputFile from a filesystem path.
func FromPath(path string) InputFile {
	return InputFile{Path: path}
}

// FromBytes creates an InputFile from in-memory bytes.
func FromBytes(data []byte, filename string) InputFile {
	return InputFile{Data: data, FileName: filename}
}

// FromReader creates an InputFile from an open byte stream.
func FromReader(r io.Reader, filename string) InputFile {
	return InputFile{Reader: r, FileName: filename}
}

// WithName returns a copy with an explicit filename.
func (f InputFile) WithName(name string) InputFile {
	f.FileName = name
	return f
}

// WithMIME returns a copy with an explicit content type.
func (f InputFile) WithMIME(mimeType string) InputFile {
	f.MIME = mimeType
	return f
}

// IsEmpty returns true if no content source is set.
func (f InputFile) IsEmpty() bool {
	return f.Path == "" && f.Reader == nil && f.Data == nil
}

// Name returns the effective filename after inference.
func (f InputFile) Name() string {
	if f.FileName != "" {
		return f.FileName
	}
	if f.Path != "" {
		return filepath.Base(f.Path)
	}
	// os.File and friends expose the underlying name.
	if n, ok := f.Reader.(interface{ Name() string }); ok {
		if base := filepath.Base(n.Name()); base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return fallbackFileName
}

// ContentType returns the effective MIME type after inference.
func (f InputFile) ContentType() string {
	if f.MIME != "" {
		return f.MIME
	}
	if ct := mime.TypeByExtension(filepath.Ext(f.Name())); ct != "" {
		return ct
	}
	return fallbackContentType
}

// open returns the content stream. Path-based files are opened here, so a
// missing or unreadable file surfaces before the request is sent.
func (f InputFile) open() (io.ReadCloser, error) {
	switch {
	case f.Path != "":
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
		return file, nil
	case f.Data != nil:
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	case f.Reader != nil:
		if rc, ok := f.Reader.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(f.Reader), nil
	default:
		return nil, fmt.Errorf("input file has no content source")
	}
}
