package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
)

func TestStoreWritesUnderCategoryAndOwner(t *testing.T) {
	base := t.TempDir()
	s := NewLocalFileStorer(base)

	rel, err := s.Store("user-1", "CV.PDF", bytes.NewReader(pdfBytes), ResumePolicy)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "resumes/user-1/"))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))

	got, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)
}

func TestStoreRejectsBadExtension(t *testing.T) {
	s := NewLocalFileStorer(t.TempDir())
	_, err := s.Store("user-1", "cv.txt", bytes.NewReader(pdfBytes), ResumePolicy)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestStoreRejectsMismatchedContent(t *testing.T) {
	s := NewLocalFileStorer(t.TempDir())
	_, err := s.Store("user-1", "cv.pdf", strings.NewReader("just some plain text"), ResumePolicy)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestStoreRejectsOversizedFile(t *testing.T) {
	s := NewLocalFileStorer(t.TempDir())
	policy := OfficePhotoPolicy
	policy.MaxBytes = 8
	_, err := s.Store("user-1", "office.png", bytes.NewReader(pngBytes), policy)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestStoreRejectsEmptyFile(t *testing.T) {
	s := NewLocalFileStorer(t.TempDir())
	_, err := s.Store("user-1", "office.png", bytes.NewReader(nil), OfficePhotoPolicy)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestStoreAcceptsImageForPhotos(t *testing.T) {
	s := NewLocalFileStorer(t.TempDir())
	rel, err := s.Store("user-1", "office.png", bytes.NewReader(pngBytes), OfficePhotoPolicy)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "office_photos/user-1/"))
}
