package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/tracksheet/internal/domain/upload"
)

// multipartOverhead allows for boundaries and part headers on top of the file.
const multipartOverhead = 1 << 20

type uploadResponse struct {
	FileURL string `json:"fileUrl"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	uploads := s.opts.Uploads
	if r.ContentLength > uploads.MaxBytes()+multipartOverhead {
		writeError(w, r, fmt.Errorf("%w: %s", upload.ErrTooLarge, uploads.TooLargeMessage()), "Failed to upload file")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxBytes()+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: expected multipart/form-data", upload.ErrInvalidInput), "Failed to upload file")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, r, fmt.Errorf("%w: no file provided", upload.ErrInvalidInput), "Failed to upload file")
			return
		}
		if err != nil {
			writeError(w, r, uploadReadError(err, uploads), "Failed to upload file")
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		url, err := uploads.Upload(r.Context(), ownerFrom(r), upload.Request{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Size:        -1,
			Body:        part,
		})
		_ = part.Close()
		if err != nil {
			writeError(w, r, uploadReadError(err, uploads), "Failed to upload file")
			return
		}
		writeJSON(w, http.StatusOK, uploadResponse{FileURL: url})
		return
	}
}

func uploadReadError(err error, uploads UploadService) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: %s", upload.ErrTooLarge, uploads.TooLargeMessage())
	}
	return err
}
