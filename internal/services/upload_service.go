package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"vinoteca/internal/repositories"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnsupportedFile marks uploads whose content is not on the image
// allow-list. The check sniffs bytes, not the client-supplied filename.
var ErrUnsupportedFile = errors.New("unsupported file type")

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

// UploadService stores label images on disk under collision-free names.
type UploadService struct {
	dir string
}

// NewUploadService creates the upload directory if needed.
func NewUploadService(dir string) (*UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &UploadService{dir: dir}, nil
}

// SaveImage sniffs the upload, rejects non-images and stores the content
// as `<sanitized-base>_<uuid><ext>`. The unique suffix means two callers
// uploading the same filename at once both succeed with distinct names.
func (s *UploadService) SaveImage(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to sniff upload: %w", err)
	}
	if !isAllowedImage(mtype) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := uniqueName(fh.Filename, mtype.Extension())
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return name, nil
}

// FilePath resolves a stored file name to its on-disk path. Names that
// try to escape the upload directory come back as not found.
func (s *UploadService) FilePath(name string) (string, error) {
	if name == "" || name != filepath.Base(filepath.Clean(name)) {
		return "", fmt.Errorf("file %q: %w", name, repositories.ErrNotFound)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file %q: %w", name, repositories.ErrNotFound)
	}
	return path, nil
}

// Remove deletes a stored file, tolerating names that are already gone.
func (s *UploadService) Remove(name string) error {
	path, err := s.FilePath(name)
	if err != nil {
		return nil
	}
	return os.Remove(path)
}

func isAllowedImage(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

// uniqueName keeps a recognizable slug of the original filename and makes
// the stored name unique. The extension comes from the sniffed type, never
// from the client.
func uniqueName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.ToLower(base)

	var b strings.Builder
	lastDash := true
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "upload"
	}
	if len(slug) > 64 {
		slug = slug[:64]
	}
	return fmt.Sprintf("%s_%s%s", slug, uuid.New().String(), ext)
}
