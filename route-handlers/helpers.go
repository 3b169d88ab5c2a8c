package routehandlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/webutil"
)

const (
	paramID          = "id"
	paramCandidateID = "candidateID"

	dateLayout = "2006-01-02"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// uuidParam reads a path parameter and rejects malformed ids with a 400.
func uuidParam(r *http.Request, name, label string) (string, error) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", webutil.ErrBadRequest(fmt.Sprintf("Invalid %s ID format", label))
	}
	return id, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, datastore.ErrDuplicate)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// optionalString trims s; empty becomes nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func today(now time.Time) time.Time {
	n := now.UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// flexInt accepts a JSON number, a numeric string, or ""/null as unset.
type flexInt struct {
	Set   bool
	Value *int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		n := int(v)
		f.Value = &n
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("a valid integer is required")
		}
		f.Value = &n
	default:
		return fmt.Errorf("a valid integer is required")
	}
	return nil
}

// flexBool accepts booleans, "true"/"false" and the job status words "published"/"draft".
type flexBool struct {
	Set   bool
	Value bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		f.Set, f.Value = true, v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "published":
			f.Set, f.Value = true, true
		case "false", "0", "no", "draft", "":
			f.Set, f.Value = true, false
		default:
			return fmt.Errorf("must be a valid boolean")
		}
	default:
		return fmt.Errorf("must be a valid boolean")
	}
	return nil
}

// stringList accepts a JSON array of strings or a single comma-separated string.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*s = cleanList(arr)
		return nil
	}
	var one *string
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected a list of strings")
	}
	if one == nil {
		*s = nil
		return nil
	}
	*s = cleanList(strings.Split(*one, ","))
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// normalizePhone strips formatting characters and checks the length rules for
// domestic (9-15 digits) and international (+, 10-16 chars) numbers.
func normalizePhone(phone string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(cleaned, "+") {
		if len(cleaned) < 10 || len(cleaned) > 16 {
			return "", errors.New("Phone number must be between 10-16 characters for international format.")
		}
		return cleaned, nil
	}
	if len(cleaned) < 9 || len(cleaned) > 15 || strings.Trim(cleaned, "0123456789") != "" {
		return "", errors.New("Phone number must be 9-15 digits.")
	}
	return cleaned, nil
}

// withScheme prefixes https:// to links entered without a scheme.
func withScheme(link *string) *string {
	v := optionalString(link)
	if v == nil {
		return nil
	}
	if !strings.HasPrefix(*v, "http://") && !strings.HasPrefix(*v, "https://") {
		s := "https://" + *v
		return &s
	}
	return v
}

// isValidURL accepts absolute http(s) URLs and bare host names.
func isValidURL(raw string) bool {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return strings.Contains(u.Host, ".") && !strings.ContainsAny(u.Host, " _")
}
