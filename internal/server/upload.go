package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

var (
	// ErrDecode marks a request body that could not be parsed as a form.
	ErrDecode = errors.New("malformed form body")
	// ErrTooLarge marks a request body over the configured upload cap.
	ErrTooLarge = errors.New("request body too large")
)

// decodeSubmission parses a POSTed form, multipart or urlencoded, into a
// SubmittedForm. The whole body is capped at maxBytes and kept in memory.
func decodeSubmission(w http.ResponseWriter, r *http.Request, maxBytes int64) (*SubmittedForm, error) {
	if r.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: content length %d exceeds %d", ErrTooLarge, r.ContentLength, maxBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, classifyParseError(err)
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	} else if err := r.ParseForm(); err != nil {
		return nil, classifyParseError(err)
	}

	sub := decodeFields(r.PostForm)

	resume, err := readResume(r)
	if err != nil {
		return nil, err
	}
	sub.Resume = resume
	return sub, nil
}

func classifyParseError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return fmt.Errorf("%w: %v", ErrTooLarge, err)
	}
	return fmt.Errorf("%w: %v", ErrDecode, err)
}

// readResume reads the resume part fully to measure it. It returns nil when
// no file was chosen; browsers send an empty filename in that case.
func readResume(r *http.Request) (*ResumeInfo, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[fieldResume]
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, nil
	}
	fh := headers[0]

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open resume: %v", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read resume: %v", ErrDecode, err)
	}

	return &ResumeInfo{
		Filename:    SanitizeFilename(fh.Filename),
		Size:        int64(len(content)),
		ContentType: strings.TrimSpace(fh.Header.Get("Content-Type")),
		Sniffed:     http.DetectContentType(content),
	}, nil
}
