package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// defaultUploadDir is used when no base path is configured.
const defaultUploadDir = "_uploads"

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
)

// UploadPolicy bounds what a single upload may contain.
// Content is checked by extension and by sniffed MIME type.
type UploadPolicy struct {
	Category   string
	MaxBytes   int64
	Extensions []string
	MIMETypes  []string
}

const mb = 1 << 20

var (
	ResumePolicy = UploadPolicy{
		Category:   "resumes",
		MaxBytes:   5 * mb,
		Extensions: []string{".pdf", ".doc", ".docx"},
		MIMETypes:  documentMIMETypes,
	}
	RegistrationDocumentPolicy = UploadPolicy{
		Category:   "company_documents",
		MaxBytes:   10 * mb,
		Extensions: []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"},
		MIMETypes:  append(append([]string{}, documentMIMETypes...), "image/jpeg", "image/png"),
	}
	OfficePhotoPolicy = UploadPolicy{
		Category:   "office_photos",
		MaxBytes:   5 * mb,
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif"},
		MIMETypes:  []string{"image/jpeg", "image/png", "image/gif"},
	}
)

// Legacy .doc files sniff as OLE storage and some .docx files as plain zip.
var documentMIMETypes = []string{
	"application/pdf",
	"application/msword",
	"application/x-ole-storage",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/zip",
}

// FileStorer persists uploaded files.
type FileStorer interface {
	// Store validates and saves content, returning the storage path relative to the upload root.
	Store(ownerID, originalName string, content io.Reader, policy UploadPolicy) (relativePath string, err error)
}

// LocalFileStorer implements FileStorer on the local file system.
type LocalFileStorer struct {
	basePath string
}

func NewLocalFileStorer(basePath string) *LocalFileStorer {
	if basePath == "" {
		basePath = defaultUploadDir
	}
	return &LocalFileStorer{basePath: basePath}
}

// Store writes to <basePath>/<category>/<ownerID>/<uuid><ext> and returns
// <category>/<ownerID>/<uuid><ext> with forward slashes.
func (lfs *LocalFileStorer) Store(ownerID, originalName string, content io.Reader, policy UploadPolicy) (string, error) {
	if ownerID == "" || policy.Category == "" {
		return "", fmt.Errorf("owner and category are required for storing uploads")
	}

	ext, err := CheckExtension(originalName, policy)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(content, policy.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > policy.MaxBytes {
		return "", fmt.Errorf("%w: limit is %d MB", ErrFileTooLarge, policy.MaxBytes/mb)
	}
	if err := checkContentType(data, policy); err != nil {
		return "", err
	}

	fileName := uuid.NewString() + ext
	fullDir := filepath.Join(lfs.basePath, policy.Category, ownerID)
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "dir", fullDir, "error", err)
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(fullDir, fileName), data, 0o644); err != nil {
		slog.Error("Failed to write upload", "dir", fullDir, "error", err)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	rel := path.Join(policy.Category, ownerID, fileName)
	slog.Info("Stored upload", "path", rel, "bytes", len(data))
	return rel, nil
}

// CheckExtension returns the lower-cased extension of name when the policy allows it.
func CheckExtension(name string, policy UploadPolicy) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range policy.Extensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: allowed extensions are %s", ErrUnsupportedType, strings.Join(policy.Extensions, ", "))
}

func checkContentType(data []byte, policy UploadPolicy) error {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range policy.MIMETypes {
			if m.Is(allowed) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: content looks like %s", ErrUnsupportedType, detected.String())
}
