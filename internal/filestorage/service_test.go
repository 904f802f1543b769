package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupFileStorageService(t *testing.T) (*FileStorageService, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "media")
	fsService, err := NewFileStorageService(root, "http://localhost:8000/media/", zap.NewNop())
	require.NoError(t, err)
	return fsService, root
}

// newTestFileHeader builds a FileHeader the way gin would after parsing a multipart body.
func newTestFileHeader(t *testing.T, fieldname, filename, content, contentType string) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldname, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	files := form.File[fieldname]
	require.NotEmpty(t, files)
	return files[0]
}

func TestSaveUploadedFile_Image(t *testing.T) {
	fsService, root := setupFileStorageService(t)

	fh := newTestFileHeader(t, "images", "tomato.JPG", "jpeg bytes", "image/jpeg")
	relativePath, err := fsService.SaveUploadedFile(fh, "crop_images", KindImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relativePath, "crop_images/"))
	assert.True(t, strings.HasSuffix(relativePath, ".jpg"))

	content, err := os.ReadFile(filepath.Join(root, relativePath))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(content))
}

func TestSaveUploadedFile_Video(t *testing.T) {
	fsService, _ := setupFileStorageService(t)

	fh := newTestFileHeader(t, "video", "harvest.mp4", "mp4 bytes", "video/mp4")
	relativePath, err := fsService.SaveUploadedFile(fh, "crop_videos", KindVideo)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(relativePath, ".mp4"))

	_, err = fsService.SaveUploadedFile(fh, "crop_images", KindImage)
	assert.Error(t, err, "a video is not accepted where an image is expected")
}

func TestSaveUploadedFile_ContentTypeFallback(t *testing.T) {
	fsService, _ := setupFileStorageService(t)

	fh := newTestFileHeader(t, "image", "leafphoto", "png bytes", "image/png")
	relativePath, err := fsService.SaveUploadedFile(fh, "detections", KindImage)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(relativePath, ".png"))

	fh = newTestFileHeader(t, "image", "notes", "text", "text/plain")
	_, err = fsService.SaveUploadedFile(fh, "detections", KindImage)
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestSaveUploadedFile_Rejections(t *testing.T) {
	fsService, _ := setupFileStorageService(t)

	_, err := fsService.SaveUploadedFile(nil, "x", KindImage)
	assert.EqualError(t, err, "fileHeader cannot be nil")

	fh := newTestFileHeader(t, "image", "doc.txt", "text", "text/plain")
	_, err = fsService.SaveUploadedFile(fh, "x", KindImage)
	assert.ErrorContains(t, err, "unsupported file extension")

	fh = newTestFileHeader(t, "image", "a.png", "png", "image/png")
	_, err = fsService.SaveUploadedFile(fh, "../escape", KindImage)
	assert.Error(t, err)
}

func TestDeleteFile(t *testing.T) {
	fsService, root := setupFileStorageService(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "profile_photos"), os.ModePerm))
	target := filepath.Join(root, "profile_photos", "p.jpg")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	require.NoError(t, fsService.DeleteFile("profile_photos/p.jpg"))
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, fsService.DeleteFile("profile_photos/missing.jpg"))

	outside := filepath.Join(filepath.Dir(root), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))
	assert.ErrorContains(t, fsService.DeleteFile("../outside.txt"), "invalid file path for deletion")
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestURL(t *testing.T) {
	fsService, _ := setupFileStorageService(t)
	assert.Equal(t, "http://localhost:8000/media/crop_images/a.jpg", fsService.URL("crop_images/a.jpg"))
	assert.Equal(t, "", fsService.URL(""))
}
