package controllers

import (
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

const uploadFormField = "image"

// imageUpload is the decoded multipart image of an upload request.
// Callers must Close it.
type imageUpload struct {
	file        multipart.File
	filename    string
	contentType string
}

func (u *imageUpload) Close() {
	if u.file != nil {
		u.file.Close()
	}
}

// imageFromRequest reads the "image" field of a multipart form, enforcing
// the configured size cap.
func imageFromRequest(r *http.Request, maxUploadMB int) (*imageUpload, error) {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	maxBytes := int64(maxUploadMB) << 20

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required")
	}

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		file.Close()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type")
	}

	return &imageUpload{file: file, filename: header.Filename, contentType: contentType}, nil
}
