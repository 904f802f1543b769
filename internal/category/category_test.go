package category

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/platform/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := database.NewTestDB(t, &Category{})
	return NewService(NewGORMRepository(db), zap.NewNop())
}

func TestCreateCategory_SlugAndConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Leafy Vegetables"})
	require.NoError(t, err)
	assert.Equal(t, "leafy-vegetables", cat.Slug)

	_, err = svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Leafy Vegetables"})
	assert.True(t, errors.Is(err, common.ErrConflict))

	found, err := svc.GetCategoryByName(ctx, "leafy vegetables")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, found.ID)

	_, err = svc.GetCategoryByName(ctx, "Spices")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetAllCategories_Sorted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"Vegetables", "Fruits", "Grains"} {
		_, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: name})
		require.NoError(t, err)
	}
	all, err := svc.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Fruits", all[0].Name)
	assert.Equal(t, "Vegetables", all[2].Name)
}

func TestHandler_CreateRequiresStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	deny := func(c *gin.Context) { common.RespondWithError(c, common.ErrForbidden) }

	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api/marketplace"), pass, pass)
	denied := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(denied.Group("/api/marketplace"), pass, deny)

	body, _ := json.Marshal(map[string]string{"name": "Pulses"})
	req := httptest.NewRequest(http.MethodPost, "/api/marketplace/categories/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	denied.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/marketplace/categories/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/marketplace/categories/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"pulses"`)
}
