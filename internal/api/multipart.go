package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultFileField = "photo"
	uploadFilename   = "photo.jpg"
	uploadMIMEType   = "image/jpeg"
)

// FilePart is the single binary part of a multipart request.
type FilePart struct {
	// FieldName defaults to "photo".
	FieldName string
	Data      []byte
}

// MultipartBody describes a multipart/form-data body.
type MultipartBody struct {
	Fields map[string]string
	File   *FilePart
}

// NewBoundary returns a fresh "Boundary-<UUID>" delimiter.
func NewBoundary() string {
	return "Boundary-" + strings.ToUpper(uuid.NewString())
}

// EncodeMultipart renders fields (sorted by key) and an optional file part
// using boundary. The body always ends with "--<boundary>--\r\n".
func EncodeMultipart(fields map[string]string, file *FilePart, boundary string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.SetBoundary(boundary); err != nil {
		return nil, fmt.Errorf("invalid multipart boundary %q: %w", boundary, err)
	}

	if len(fields) == 0 && file == nil {
		// multipart.Writer.Close prefixes the delimiter with CRLF even when
		// no part was written.
		_, _ = fmt.Fprintf(body, "--%s--\r\n", boundary)
		return body.Bytes(), nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := writer.WriteField(key, fields[key]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if file != nil {
		name := file.FieldName
		if name == "" {
			name = defaultFileField
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, uploadFilename))
		header.Set("Content-Type", uploadMIMEType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", name, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("failed to write file content %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body.Bytes(), nil
}
