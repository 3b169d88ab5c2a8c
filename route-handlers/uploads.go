package routehandlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/jobportal/jobportal/storage"
	"github.com/jobportal/jobportal/webutil"
)

const (
	multipartMemory = 8 << 20

	// mbSlack leaves room for multipart framing above a file size limit.
	mbSlack = 1 << 20
)

var errUploadTooLarge = webutil.NewHTTPError(http.StatusRequestEntityTooLarge, "Upload too large")

// parseUpload bounds the request body to maxBody and parses the multipart form.
// A body over the bound yields tooLarge.
func parseUpload(w http.ResponseWriter, r *http.Request, maxBody int64, tooLarge error) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return tooLarge
		}
		return webutil.ErrBadRequestWrap("Invalid multipart form", err)
	}
	return nil
}

// storeFile validates one uploaded file against policy and stores it.
// Policy violations come back as a 400 carrying tooLargeMsg or typeMsg.
func storeFile(files storage.FileStorer, ownerID string, fh *multipart.FileHeader, policy storage.UploadPolicy, tooLargeMsg, typeMsg string) (string, error) {
	if fh.Size > policy.MaxBytes {
		return "", webutil.ErrBadRequest(tooLargeMsg)
	}
	if _, err := storage.CheckExtension(fh.Filename, policy); err != nil {
		return "", webutil.ErrBadRequestWrap(typeMsg, err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	path, err := files.Store(ownerID, fh.Filename, f, policy)
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return "", webutil.ErrBadRequestWrap(tooLargeMsg, err)
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrEmptyFile):
		return "", webutil.ErrBadRequestWrap(typeMsg, err)
	case err != nil:
		return "", webutil.ErrInternalServerWrap("Failed to store upload", err)
	}
	return path, nil
}