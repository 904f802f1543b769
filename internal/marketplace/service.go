package marketplace

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"smartkheti_backend/internal/category"
	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/filestorage"
	"smartkheti_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cropImagesDir = "crop_images"
	cropVideosDir = "crop_videos"
)

// Service defines crop listing business logic.
type Service interface {
	CreateListing(ctx context.Context, farmerID uuid.UUID, req CreateListingRequest) (*CropListing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*CropListing, error)
	ListListings(ctx context.Context, search string) ([]CropListing, error)
	MyListings(ctx context.Context, farmerID uuid.UUID) ([]CropListing, error)
	UpdateListing(ctx context.Context, id, farmerID uuid.UUID, req UpdateListingRequest) (*CropListing, error)
	DeleteListing(ctx context.Context, id, farmerID uuid.UUID) error
	MediaURL(relativePath string) string
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	categories category.Service
	storage    filestorage.Storage
	index      SearchIndex
	cfg        *config.Config
	logger     *zap.Logger
	now        func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(
	repo Repository,
	categories category.Service,
	storage filestorage.Storage,
	index SearchIndex,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		categories: categories,
		storage:    storage,
		index:      index,
		cfg:        cfg,
		logger:     logger.Named("MarketplaceService"),
		now:        time.Now,
	}
}

func (s *ServiceImplementation) CreateListing(ctx context.Context, farmerID uuid.UUID, req CreateListingRequest) (*CropListing, error) {
	cat, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	contact, err := s.normalizeContact("contact_number", req.ContactNumber)
	if err != nil {
		return nil, err
	}
	var optionalContact *string
	if strings.TrimSpace(req.OptionalContact) != "" {
		oc, err := s.normalizeContact("optional_contact", req.OptionalContact)
		if err != nil {
			return nil, err
		}
		optionalContact = &oc
	}

	saved := make([]string, 0, len(req.Images)+1)
	cleanup := func() {
		for _, p := range saved {
			_ = s.storage.DeleteFile(p)
		}
	}

	images, err := s.saveImages(req.Images, &saved)
	if err != nil {
		cleanup()
		return nil, err
	}

	listing := &CropListing{
		FarmerID:        farmerID,
		CropName:        strings.TrimSpace(req.CropName),
		CategoryID:      &cat.ID,
		Quantity:        strings.TrimSpace(req.Quantity),
		Rate:            RoundRate(req.Rate),
		Location:        strings.TrimSpace(req.Location),
		ContactNumber:   contact,
		OptionalContact: optionalContact,
		Description:     req.Description,
		DatePosted:      s.now().UTC(),
		Images:          images,
	}

	if req.Video != nil {
		path, err := s.saveFile(req.Video, cropVideosDir, filestorage.KindVideo, "video")
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, path)
		listing.VideoPath = &path
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		cleanup()
		s.logger.Warn("Failed to create listing", zap.Error(err), zap.String("farmerID", farmerID.String()))
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, created)
	s.logger.Info("Listing created", zap.String("listingID", created.ID.String()), zap.String("farmerID", farmerID.String()))
	return created, nil
}

func (s *ServiceImplementation) GetListing(ctx context.Context, id uuid.UUID) (*CropListing, error) {
	return s.repo.FindByID(ctx, id)
}

// ListListings returns every listing newest first. A search term goes to the search
// index when one is available and to the database otherwise.
func (s *ServiceImplementation) ListListings(ctx context.Context, search string) ([]CropListing, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return s.repo.FindAll(ctx, "")
	}

	ids, err := s.index.Search(ctx, search)
	if err == nil {
		return s.repo.FindByIDs(ctx, ids)
	}
	if !errors.Is(err, ErrSearchUnavailable) {
		s.logger.Warn("Search index query failed, falling back to database", zap.Error(err))
	}
	return s.repo.FindAll(ctx, search)
}

func (s *ServiceImplementation) MyListings(ctx context.Context, farmerID uuid.UUID) ([]CropListing, error) {
	return s.repo.FindByFarmer(ctx, farmerID)
}

func (s *ServiceImplementation) UpdateListing(ctx context.Context, id, farmerID uuid.UUID, req UpdateListingRequest) (*CropListing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.FarmerID != farmerID {
		return nil, common.ErrForbidden.WithDetails("You can only update your own listings.")
	}

	if req.CropName != nil {
		listing.CropName = strings.TrimSpace(*req.CropName)
	}
	if req.Category != nil {
		cat, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		listing.CategoryID = &cat.ID
		listing.Category = cat
	}
	if req.Quantity != nil {
		listing.Quantity = strings.TrimSpace(*req.Quantity)
	}
	if req.Rate != nil {
		listing.Rate = RoundRate(*req.Rate)
	}
	if req.Location != nil {
		listing.Location = strings.TrimSpace(*req.Location)
	}
	if req.ContactNumber != nil {
		contact, err := s.normalizeContact("contact_number", *req.ContactNumber)
		if err != nil {
			return nil, err
		}
		listing.ContactNumber = contact
	}
	if req.OptionalContact != nil {
		if strings.TrimSpace(*req.OptionalContact) == "" {
			listing.OptionalContact = nil
		} else {
			oc, err := s.normalizeContact("optional_contact", *req.OptionalContact)
			if err != nil {
				return nil, err
			}
			listing.OptionalContact = &oc
		}
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}

	var saved []string
	cleanup := func() {
		for _, p := range saved {
			_ = s.storage.DeleteFile(p)
		}
	}

	var newImages []CropImage
	if len(req.Images) > 0 {
		newImages, err = s.saveImages(req.Images, &saved)
		if err != nil {
			cleanup()
			return nil, err
		}
	}

	var oldVideo string
	if req.Video != nil {
		path, err := s.saveFile(req.Video, cropVideosDir, filestorage.KindVideo, "video")
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, path)
		if listing.VideoPath != nil {
			oldVideo = *listing.VideoPath
		}
		listing.VideoPath = &path
	}

	removed, err := s.repo.Update(ctx, listing, newImages)
	if err != nil {
		cleanup()
		return nil, err
	}
	if oldVideo != "" {
		removed = append(removed, oldVideo)
	}
	s.deleteFiles(removed)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, updated)
	return updated, nil
}

func (s *ServiceImplementation) DeleteListing(ctx context.Context, id, farmerID uuid.UUID) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.FarmerID != farmerID {
		return common.ErrForbidden.WithDetails("You can only delete your own listings.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	paths := make([]string, 0, len(listing.Images)+1)
	for _, img := range listing.Images {
		paths = append(paths, img.ImagePath)
	}
	if listing.VideoPath != nil {
		paths = append(paths, *listing.VideoPath)
	}
	s.deleteFiles(paths)

	if err := s.index.DeleteListing(ctx, id); err != nil {
		s.logger.Warn("Failed to remove listing from search index", zap.Error(err), zap.String("listingID", id.String()))
	}
	s.logger.Info("Listing deleted", zap.String("listingID", id.String()))
	return nil
}

func (s *ServiceImplementation) MediaURL(relativePath string) string {
	return s.storage.URL(relativePath)
}

func (s *ServiceImplementation) resolveCategory(ctx context.Context, name string) (*category.Category, error) {
	cat, err := s.categories.GetCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewValidationAPIError(map[string]string{
				"category": "Object with name=" + strings.TrimSpace(name) + " does not exist.",
			})
		}
		return nil, err
	}
	return cat, nil
}

func (s *ServiceImplementation) normalizeContact(field, raw string) (string, error) {
	phone, err := user.NormalizePhone(raw, s.cfg.DefaultPhoneRegion)
	if err != nil {
		return "", common.NewValidationAPIError(map[string]string{field: "Enter a valid phone number."})
	}
	return phone, nil
}

func (s *ServiceImplementation) saveImages(files []*multipart.FileHeader, saved *[]string) ([]CropImage, error) {
	images := make([]CropImage, 0, len(files))
	for _, fh := range files {
		path, err := s.saveFile(fh, cropImagesDir, filestorage.KindImage, "images")
		if err != nil {
			return nil, err
		}
		*saved = append(*saved, path)
		images = append(images, CropImage{ImagePath: path})
	}
	return images, nil
}

func (s *ServiceImplementation) saveFile(fh *multipart.FileHeader, dir string, kind filestorage.Kind, field string) (string, error) {
	path, err := s.storage.SaveUploadedFile(fh, dir, kind)
	if err != nil {
		return "", common.NewValidationAPIError(map[string]string{field: err.Error()})
	}
	return path, nil
}

func (s *ServiceImplementation) deleteFiles(paths []string) {
	for _, p := range paths {
		if err := s.storage.DeleteFile(p); err != nil {
			s.logger.Warn("Failed to delete media file", zap.String("path", p), zap.Error(err))
		}
	}
}

func (s *ServiceImplementation) syncIndex(ctx context.Context, listing *CropListing) {
	if err := s.index.IndexListing(ctx, listing); err != nil {
		s.logger.Warn("Failed to index listing", zap.Error(err), zap.String("listingID", listing.ID.String()))
	}
}
