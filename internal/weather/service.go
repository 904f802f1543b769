package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/platform/cache"
	"smartkheti_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileProvider loads the authenticated user's profile.
type ProfileProvider interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// SavedForecast pairs a saved location with its forecast.
type SavedForecast struct {
	Location SavedLocationResponse `json:"location"`
	Forecast *Forecast             `json:"forecast"`
}

type Service interface {
	Forecast(ctx context.Context, lat, lon float64) (*Forecast, error)
	ListSavedLocations(ctx context.Context, userID uuid.UUID) ([]SavedLocation, error)
	CreateSavedLocation(ctx context.Context, userID uuid.UUID, req CreateSavedLocationRequest) (*SavedLocation, error)
	DeleteSavedLocation(ctx context.Context, userID, id uuid.UUID) error
	ForecastForSaved(ctx context.Context, userID, locationID uuid.UUID) (*SavedForecast, error)
	ProfileLocation(ctx context.Context, userID uuid.UUID) (*ProfileLocation, error)
}

type service struct {
	repo     Repository
	client   ForecastClient
	cache    cache.Cache
	profiles ProfileProvider
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(repo Repository, client ForecastClient, c cache.Cache, profiles ProfileProvider, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		client:   client,
		cache:    c,
		profiles: profiles,
		ttl:      cfg.WeatherCacheTTL,
		logger:   logger.Named("WeatherService"),
	}
}

// ForecastCacheKey buckets coordinates to two decimals (about 1 km).
func ForecastCacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather:forecast:%.2f:%.2f", lat, lon)
}

func (s *service) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	key := ForecastCacheKey(lat, lon)
	var cached Forecast
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Forecast cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	forecast, err := s.client.Forecast(ctx, lat, lon)
	if err != nil {
		s.logger.Error("Forecast fetch failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return nil, common.ErrBadGateway.WithDetails("Failed to fetch weather forecast.")
	}
	if s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, key, forecast, s.ttl); err != nil {
			s.logger.Warn("Forecast cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return forecast, nil
}

func (s *service) ListSavedLocations(ctx context.Context, userID uuid.UUID) ([]SavedLocation, error) {
	return s.repo.FindByUser(ctx, userID)
}

func (s *service) CreateSavedLocation(ctx context.Context, userID uuid.UUID, req CreateSavedLocationRequest) (*SavedLocation, error) {
	location := &SavedLocation{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Province:     strings.TrimSpace(req.Province),
		District:     strings.TrimSpace(req.District),
		Municipality: strings.TrimSpace(req.Municipality),
		WardNumber:   req.WardNumber,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	s.logger.Info("Saved location created", zap.String("userID", userID.String()), zap.String("name", location.Name))
	return location, nil
}

func (s *service) DeleteSavedLocation(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *service) ForecastForSaved(ctx context.Context, userID, locationID uuid.UUID) (*SavedForecast, error) {
	location, err := s.repo.FindForUser(ctx, locationID, userID)
	if err != nil {
		return nil, err
	}
	forecast, err := s.Forecast(ctx, location.Latitude, location.Longitude)
	if err != nil {
		return nil, err
	}
	return &SavedForecast{Location: ToSavedLocationResponse(location), Forecast: forecast}, nil
}

func (s *service) ProfileLocation(ctx context.Context, userID uuid.UUID) (*ProfileLocation, error) {
	u, err := s.profiles.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileLocation{
		Phone:        u.Phone,
		Province:     u.Province,
		District:     u.District,
		Municipality: u.Municipality,
		WardNumber:   u.WardNumber,
	}, nil
}
