package detection

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeAuth(c *gin.Context) {
	id, err := uuid.Parse(c.GetHeader("X-Test-User"))
	if err != nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	c.Set(common.UserIDKey, id)
	c.Set(common.UserIsStaffKey, c.GetHeader("X-Test-Staff") == "true")
	c.Next()
}

func setupRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	r := gin.New()
	NewHandler(f.svc, 10<<20, zap.NewNop()).RegisterRoutes(r.Group("/api/disease_detection"), fakeAuth, middleware.StaffOnly())
	return r, f
}

func do(r http.Handler, req *http.Request, userID uuid.UUID, staff bool) *httptest.ResponseRecorder {
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
	}
	if staff {
		req.Header.Set("X-Test-Staff", "true")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, "leaf.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/disease_detection/detect/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandler_DetectAndHistory(t *testing.T) {
	r, f := setupRouter(t)
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(Prediction{Label: "Tomato_Early_blight", Confidence: 0.8}, nil).Once()

	w := do(r, uploadRequest(t, "image", pngBytes(t)), f.farmer.ID, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Early_blight", env.Data["detected_disease"])
	assert.Equal(t, "Tomato", env.Data["crop"])
	assert.Len(t, env.Data["products"], 2)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/disease_detection/detection-history/", nil), f.farmer.ID, false)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data []RecordResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Data, 1)
	assert.Equal(t, "Tomato_Early_blight", history.Data[0].DetectedDisease)
	assert.Contains(t, history.Data[0].Image, "http://localhost:8000/media/detections/")
}

func TestHandler_DetectValidation(t *testing.T) {
	r, f := setupRouter(t)

	w := do(r, uploadRequest(t, "image", pngBytes(t)), uuid.Nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, uploadRequest(t, "photo", pngBytes(t)), f.farmer.ID, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file was submitted.")

	w = do(r, uploadRequest(t, "image", []byte("text")), f.farmer.ID, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AdminDetections(t *testing.T) {
	r, f := setupRouter(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/disease_detection/admin/detections/", nil), f.farmer.ID, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/disease_detection/admin/detections/?page_size=5", nil), f.admin.ID, true)
	require.Equal(t, http.StatusOK, w.Code)
	var page common.PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 5, page.Pagination.PageSize)
	assert.EqualValues(t, 0, page.Pagination.TotalItems)
}
