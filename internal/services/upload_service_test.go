package services_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vinoteca/internal/repositories"
	"vinoteca/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)

// makeFileHeader round-trips content through a multipart form, yielding
// the same *multipart.FileHeader a fiber handler receives.
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestSaveImageStoresSniffedType(t *testing.T) {
	svc, err := services.NewUploadService(t.TempDir())
	require.NoError(t, err)

	// Extension follows the sniffed content, not the client filename.
	name, err := svc.SaveImage(makeFileHeader(t, "Label Scan.txt", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "label-scan_"), "got %q", name)
	assert.True(t, strings.HasSuffix(name, ".png"), "got %q", name)

	path, err := svc.FilePath(name)
	require.NoError(t, err)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSaveImageRejectsNonImages(t *testing.T) {
	svc, err := services.NewUploadService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.SaveImage(makeFileHeader(t, "label.png", []byte("just text pretending")))
	assert.ErrorIs(t, err, services.ErrUnsupportedFile)
}

func TestSaveImageConcurrentSameNameNeverCollides(t *testing.T) {
	dir := t.TempDir()
	svc, err := services.NewUploadService(dir)
	require.NoError(t, err)

	const uploads = 8
	names := make([]string, uploads)
	headers := make([]*multipart.FileHeader, uploads)
	for i := range headers {
		headers[i] = makeFileHeader(t, "label.png", pngBytes)
	}

	var wg sync.WaitGroup
	errs := make([]error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i], errs[i] = svc.SaveImage(headers[i])
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < uploads; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[names[i]], "name %q assigned twice", names[i])
		seen[names[i]] = true
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, uploads)
}

func TestFilePathBlocksTraversal(t *testing.T) {
	dir := t.TempDir()
	svc, err := services.NewUploadService(dir)
	require.NoError(t, err)

	// A file outside the upload dir that must stay unreachable.
	secret := filepath.Join(dir, "..", "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("nope"), 0o600))

	for _, name := range []string{"../secret.txt", "..\\secret.txt", "a/../../secret.txt", ""} {
		_, err := svc.FilePath(name)
		assert.ErrorIs(t, err, repositories.ErrNotFound, "name %q", name)
	}

	_, err = svc.FilePath("missing.png")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRemoveTolerateMissing(t *testing.T) {
	svc, err := services.NewUploadService(t.TempDir())
	require.NoError(t, err)

	name, err := svc.SaveImage(makeFileHeader(t, "label.png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(name))
	_, err = svc.FilePath(name)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.NoError(t, svc.Remove(name))
}
