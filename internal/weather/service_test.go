package weather

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/platform/cache"
	"smartkheti_backend/internal/platform/database"
	"smartkheti_backend/internal/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProfileProvider struct {
	mock.Mock
}

func (m *MockProfileProvider) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type fixture struct {
	svc      Service
	calls    *int32
	redis    *miniredis.Miniredis
	profiles *MockProfileProvider
	farmer   *user.User
	other    *user.User
}

func newFixture(t *testing.T, upstreamStatus int) *fixture {
	t.Helper()
	db := database.NewTestDB(t, &user.User{}, &SavedLocation{})
	farmer := &user.User{Phone: "+9779841234567", PasswordHash: "x", FirstName: "Ram", LastName: "Thapa", PreferredLanguage: "np", IsActive: true}
	other := &user.User{Phone: "+9779801111111", PasswordHash: "x", FirstName: "Sita", LastName: "Rai", PreferredLanguage: "np", IsActive: true}
	require.NoError(t, db.Create(farmer).Error)
	require.NoError(t, db.Create(other).Error)

	server, calls := fakeOpenMeteo(t, upstreamStatus)
	client := NewOpenMeteoClient(server.URL, 16, "Asia/Kathmandu", server.Client(), zap.NewNop())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	profiles := new(MockProfileProvider)
	cfg := &config.Config{WeatherCacheTTL: 30 * time.Minute}
	svc := NewService(NewGORMRepository(db), client, cache.NewRedisCache(rdb, "test:"), profiles, cfg, zap.NewNop())
	return &fixture{svc: svc, calls: calls, redis: mr, profiles: profiles, farmer: farmer, other: other}
}

func float(v float64) *float64 { return &v }

func TestForecast_CachesByRoundedCoordinates(t *testing.T) {
	f := newFixture(t, http.StatusOK)
	ctx := context.Background()

	first, err := f.svc.Forecast(ctx, 27.7, 85.32)
	require.NoError(t, err)
	second, err := f.svc.Forecast(ctx, 27.7, 85.32)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(f.calls))
	assert.Equal(t, first.Daily.Time, second.Daily.Time)
	assert.True(t, f.redis.Exists("test:"+ForecastCacheKey(27.7, 85.32)))
	assert.Equal(t, "weather:forecast:27.70:85.32", ForecastCacheKey(27.7001, 85.3249))

	f.redis.FastForward(31 * time.Minute)
	_, err = f.svc.Forecast(ctx, 27.7, 85.32)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(f.calls))
}

func TestForecast_UpstreamFailure(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError)
	_, err := f.svc.Forecast(context.Background(), 27.7, 85.32)
	assert.ErrorIs(t, err, common.ErrBadGateway)
	assert.False(t, f.redis.Exists("test:"+ForecastCacheKey(27.7, 85.32)))
}

func TestForecast_WithoutCache(t *testing.T) {
	server, calls := fakeOpenMeteo(t, http.StatusOK)
	client := NewOpenMeteoClient(server.URL, 16, "Asia/Kathmandu", server.Client(), zap.NewNop())
	svc := NewService(nil, client, cache.NoopCache{}, nil, &config.Config{WeatherCacheTTL: time.Minute}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := svc.Forecast(context.Background(), 27.7, 85.32)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestSavedLocations(t *testing.T) {
	f := newFixture(t, http.StatusOK)
	ctx := context.Background()

	req := CreateSavedLocationRequest{
		Name: " My Rice Field ", Province: "Bagmati", District: "Kathmandu", Municipality: "Kathmandu", WardNumber: 4,
		Latitude: float(27.7), Longitude: float(85.32),
	}
	loc, err := f.svc.CreateSavedLocation(ctx, f.farmer.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "My Rice Field", loc.Name)

	_, err = f.svc.CreateSavedLocation(ctx, f.farmer.ID, req)
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = f.svc.CreateSavedLocation(ctx, f.other.ID, req)
	require.NoError(t, err, "names are unique per user only")

	list, err := f.svc.ListSavedLocations(ctx, f.farmer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	result, err := f.svc.ForecastForSaved(ctx, f.farmer.ID, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Rice Field", result.Location.Name)
	assert.Equal(t, "Asia/Kathmandu", result.Forecast.Timezone)

	_, err = f.svc.ForecastForSaved(ctx, f.other.ID, loc.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteSavedLocation(ctx, f.other.ID, loc.ID), common.ErrNotFound)
	require.NoError(t, f.svc.DeleteSavedLocation(ctx, f.farmer.ID, loc.ID))
	assert.ErrorIs(t, f.svc.DeleteSavedLocation(ctx, f.farmer.ID, loc.ID), common.ErrNotFound)
}

func TestProfileLocation(t *testing.T) {
	f := newFixture(t, http.StatusOK)
	district := "Chitwan"
	ward := 7
	f.farmer.District = &district
	f.farmer.WardNumber = &ward
	f.profiles.On("GetUserByID", mock.Anything, f.farmer.ID).Return(f.farmer, nil)

	loc, err := f.svc.ProfileLocation(context.Background(), f.farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, "+9779841234567", loc.Phone)
	assert.Equal(t, "Chitwan", *loc.District)
	assert.Equal(t, 7, *loc.WardNumber)
	assert.Nil(t, loc.Province)
}
