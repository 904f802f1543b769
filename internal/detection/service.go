package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/filestorage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	detectionsDir = "detections"
	// maxImagePixels bounds the decoded size of an upload.
	maxImagePixels = 50_000_000
)

// ErrImageTooLarge is returned for uploads whose declared dimensions exceed maxImagePixels.
var ErrImageTooLarge = errors.New("image dimensions are too large")

// Service defines disease detection business logic.
type Service interface {
	Detect(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*DetectionResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]DetectionRecord, error)
	AdminAll(ctx context.Context, page, pageSize int) ([]DetectionRecord, int64, error)
	MediaURL(relativePath string) string
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	classifier Classifier
	storage    filestorage.Storage
	logger     *zap.Logger
	now        func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, classifier Classifier, storage filestorage.Storage, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		classifier: classifier,
		storage:    storage,
		logger:     logger.Named("DetectionService"),
		now:        time.Now,
	}
}

// Detect classifies the uploaded leaf photo, records the run and describes the result
// using the disease catalog.
func (s *ServiceImplementation) Detect(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*DetectionResult, error) {
	img, err := decodeUpload(file)
	if err != nil {
		return nil, common.NewValidationAPIError(map[string]string{
			"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
		})
	}

	pred, err := s.classifier.Classify(ctx, img)
	if err != nil {
		if errors.Is(err, ErrClassifierUnavailable) {
			return nil, common.ErrServiceUnavailable.WithDetails("Disease detection is not available right now.")
		}
		s.logger.Error("Classification failed", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrBadGateway.WithDetails("Disease classifier failed to process the image.")
	}

	path, err := s.storage.SaveUploadedFile(file, detectionsDir, filestorage.KindImage)
	if err != nil {
		return nil, common.NewValidationAPIError(map[string]string{"image": err.Error()})
	}
	record := &DetectionRecord{
		UserID:          userID,
		ImagePath:       path,
		DetectedDisease: pred.Label,
		DetectedAt:      s.now().UTC(),
	}
	if err := s.repo.CreateRecord(ctx, record); err != nil {
		_ = s.storage.DeleteFile(path)
		return nil, err
	}
	s.logger.Info("Detection recorded",
		zap.String("userID", userID.String()),
		zap.String("label", pred.Label),
		zap.Float32("confidence", pred.Confidence))

	crop, disease := SplitLabel(pred.Label)
	info, err := s.repo.FindDisease(ctx, crop, disease)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &DetectionResult{
				DetectedDisease: pred.Label,
				Crop:            crop,
				Message:         unknownMessage,
				Confidence:      pred.Confidence,
			}, nil
		}
		return nil, err
	}
	return s.describe(info, pred.Confidence), nil
}

func (s *ServiceImplementation) describe(info *DiseaseInfo, confidence float32) *DetectionResult {
	if info.IsHealthy {
		return &DetectionResult{
			DetectedDisease: "Healthy",
			Crop:            info.Crop,
			Message:         healthyMessage,
			RecheckAdvice:   info.RecheckAdvice,
			Confidence:      confidence,
		}
	}
	products := make([]ProductResponse, 0, len(info.Products))
	for _, p := range info.Products {
		products = append(products, ProductResponse{Name: p.Name, Image: s.MediaURL(p.ImagePath)})
	}
	return &DetectionResult{
		DetectedDisease: info.Name,
		Crop:            info.Crop,
		ShortRemedy:     info.ShortRemedy,
		Treatment:       info.Treatment,
		RecheckAdvice:   info.RecheckAdvice,
		Products:        products,
		Confidence:      confidence,
	}
}

func (s *ServiceImplementation) History(ctx context.Context, userID uuid.UUID) ([]DetectionRecord, error) {
	return s.repo.FindRecordsByUser(ctx, userID)
}

func (s *ServiceImplementation) AdminAll(ctx context.Context, page, pageSize int) ([]DetectionRecord, int64, error) {
	return s.repo.FindAllRecords(ctx, page, pageSize)
}

// MediaURL resolves stored paths; absolute URLs in the catalog pass through.
func (s *ServiceImplementation) MediaURL(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	if strings.HasPrefix(relativePath, "http://") || strings.HasPrefix(relativePath, "https://") {
		return relativePath
	}
	return s.storage.URL(relativePath)
}

func decodeUpload(file *multipart.FileHeader) (image.Image, error) {
	if file == nil {
		return nil, errors.New("no file")
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(src)
	return img, err
}
