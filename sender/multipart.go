package sender

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/prilive-com/minigram/tg"
)

// FilePart is one file to be written as a multipart body part.
type FilePart struct {
	FieldName   string // e.g. "photo", "document"
	FileName    string // e.g. "photo.jpg"
	ContentType string // e.g. "image/jpeg"
	Reader      io.ReadCloser
}

// MultipartRequest is a parameter mapping split into file parts and
// string-encoded form fields.
type MultipartRequest struct {
	Files  []FilePart
	Params map[string]string
}

// HasUploads returns true if the request contains file uploads.
func (r MultipartRequest) HasUploads() bool {
	return len(r.Files) > 0
}

// Close releases the file part streams. Safe after a partial build.
func (r MultipartRequest) Close() {
	for _, f := range r.Files {
		if f.Reader != nil {
			f.Reader.Close()
		}
	}
}

// BuildMultipartRequest splits params into file parts and form fields.
// InputFile values become file parts; path-based files are opened here,
// so an unreadable file fails before any network I/O. Scalars encode via
// strconv; composites encode as JSON.
func BuildMultipartRequest(params tg.Params) (MultipartRequest, error) {
	result := MultipartRequest{
		Params: make(map[string]string, len(params)),
	}

	for name, value := range params {
		switch v := value.(type) {
		case InputFile:
			if err := appendFilePart(&result, name, v); err != nil {
				result.Close()
				return MultipartRequest{}, fmt.Errorf("field %s: %w", name, err)
			}

		case *InputFile:
			if v == nil {
				continue
			}
			if err := appendFilePart(&result, name, *v); err != nil {
				result.Close()
				return MultipartRequest{}, fmt.Errorf("field %s: %w", name, err)
			}

		case string:
			result.Params[name] = v

		case int:
			result.Params[name] = strconv.Itoa(v)

		case int64:
			result.Params[name] = strconv.FormatInt(v, 10)

		case float64:
			result.Params[name] = strconv.FormatFloat(v, 'f', -1, 64)

		case bool:
			result.Params[name] = strconv.FormatBool(v)

		case nil:
			// Absent value, skip.

		default:
			// Composite values (keyboards, entity lists) -> JSON encode
			data, err := json.Marshal(v)
			if err != nil {
				result.Close()
				return MultipartRequest{}, fmt.Errorf("field %s: JSON marshal: %w", name, err)
			}
			result.Params[name] = string(data)
		}
	}

	return result, nil
}

func appendFilePart(req *MultipartRequest, fieldName string, file InputFile) error {
	rc, err := file.open()
	if err != nil {
		return err
	}
	req.Files = append(req.Files, FilePart{
		FieldName:   fieldName,
		FileName:    file.Name(),
		ContentType: file.ContentType(),
		Reader:      rc,
	})
	return nil
}

// MultipartEncoder encodes requests as multipart/form-data. The boundary
// comes from mime/multipart's random generator, so it cannot collide with
// encoded field content.
type MultipartEncoder struct {
	w *multipart.Writer
}

// NewMultipartEncoder creates a new multipart encoder writing to w.
func NewMultipartEncoder(w io.Writer) *MultipartEncoder {
	return &MultipartEncoder{
		w: multipart.NewWriter(w),
	}
}

// ContentType returns the Content-Type header value including boundary.
func (e *MultipartEncoder) ContentType() string {
	return e.w.FormDataContentType()
}

// Close finishes the body with the trailing boundary.
func (e *MultipartEncoder) Close() error {
	return e.w.Close()
}

// Encode writes the multipart request. File parts carry an explicit
// Content-Disposition filename and a declared Content-Type. Form fields
// are written in sorted order for reproducible bodies.
func (e *MultipartEncoder) Encode(req MultipartRequest) error {
	for _, file := range req.Files {
		if err := e.writeFile(file); err != nil {
			return fmt.Errorf("file %s: %w", file.FieldName, err)
		}
	}

	names := make([]string, 0, len(req.Params))
	for name := range req.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.w.WriteField(name, req.Params[name]); err != nil {
			return fmt.Errorf("param %s: %w", name, err)
		}
	}

	return nil
}

func (e *MultipartEncoder) writeFile(file FilePart) error {
	defer file.Reader.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(file.FieldName), escapeQuotes(file.FileName)))
	header.Set("Content-Type", file.ContentType)

	part, err := e.w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}

	_, err = io.Copy(part, file.Reader)
	return err
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
