package webutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// DecodeJSON reads a JSON body into dst. strict rejects unknown fields;
// handlers accepting several client spellings of a field decode leniently.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrBadRequest("Request body must not be empty")
		case errors.As(err, &maxErr):
			return NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
		default:
			return ErrBadRequestWrap("Invalid request payload: "+err.Error(), err)
		}
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON that accepts an empty body.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := DecodeJSON(w, r, dst, false)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message == "Request body must not be empty" {
		return nil
	}
	return err
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
