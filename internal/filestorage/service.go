package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"smartkheti_backend/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind restricts which uploads a call accepts.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

var contentTypeExtensions = map[Kind]map[string]string{
	KindImage: {"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp", "image/gif": ".gif"},
	KindVideo: {"video/mp4": ".mp4", "video/quicktime": ".mov", "video/webm": ".webm", "video/x-matroska": ".mkv"},
}

var allowedExtensions = map[Kind]map[string]bool{
	KindImage: {".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true},
	KindVideo: {".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true},
}

// Storage saves uploaded media and resolves public URLs for stored paths.
type Storage interface {
	SaveUploadedFile(fileHeader *multipart.FileHeader, subDir string, kind Kind) (string, error)
	DeleteFile(relativePath string) error
	URL(relativePath string) string
}

// FileStorageService stores files on local disk under a base directory.
type FileStorageService struct {
	storagePath   string
	publicBaseURL string
	logger        *zap.Logger
}

var _ Storage = (*FileStorageService)(nil)

// NewFileStorageService creates the storage root if needed.
func NewFileStorageService(storagePath, publicBaseURL string, logger *zap.Logger) (*FileStorageService, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	return &FileStorageService{
		storagePath:   storagePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.Named("FileStorage"),
	}, nil
}

// NewFromConfig is the Wire provider.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*FileStorageService, error) {
	return NewFileStorageService(cfg.MediaStoragePath, cfg.MediaPublicBaseURL, logger)
}

// SaveUploadedFile stores the upload under subDir with a UUID filename and returns
// the slash-separated path relative to the storage root, e.g. "crop_images/<uuid>.jpg".
func (s *FileStorageService) SaveUploadedFile(fileHeader *multipart.FileHeader, subDir string, kind Kind) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}

	extension, err := resolveExtension(fileHeader, kind)
	if err != nil {
		return "", err
	}

	cleanSubDir := filepath.Clean(subDir)
	if strings.HasPrefix(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid subDir path")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	destinationDir := filepath.Join(s.storagePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	uniqueFilename := uuid.NewString() + extension
	destinationPath := filepath.Join(destinationDir, uniqueFilename)
	dst, err := os.Create(destinationPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Debug("File saved", zap.String("path", destinationPath))
	return filepath.ToSlash(filepath.Join(cleanSubDir, uniqueFilename)), nil
}

func resolveExtension(fileHeader *multipart.FileHeader, kind Kind) (string, error) {
	extension := strings.ToLower(filepath.Ext(filepath.Base(fileHeader.Filename)))
	if extension != "" {
		if !allowedExtensions[kind][extension] {
			return "", fmt.Errorf("unsupported file extension: %s", extension)
		}
		return extension, nil
	}
	contentType := fileHeader.Header.Get("Content-Type")
	for prefix, ext := range contentTypeExtensions[kind] {
		if strings.HasPrefix(contentType, prefix) {
			return ext, nil
		}
	}
	return "", fmt.Errorf("unsupported file type or missing extension: %s", contentType)
}

// DeleteFile removes a stored file. Missing files are not an error.
func (s *FileStorageService) DeleteFile(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	cleanRelativePath := filepath.Clean(relativePath)
	if strings.Contains(cleanRelativePath, "..") || filepath.IsAbs(cleanRelativePath) {
		s.logger.Warn("Rejected file deletion outside storage root", zap.String("relativePath", relativePath))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.storagePath, cleanRelativePath)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

// URL returns the absolute public URL for a stored path, or "" for an empty path.
func (s *FileStorageService) URL(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(relativePath, "/")
}

// Root returns the storage directory, used to serve media statically.
func (s *FileStorageService) Root() string {
	return s.storagePath
}
