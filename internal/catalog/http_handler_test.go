package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/Randallflagg19/travel/internal/httpx"
)

const testAssetID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newTestRouter(h *HTTPHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/v1/assets", h.List)
	r.Get("/v1/assets/{id}", h.Get)
	r.Post("/v1/assets", h.Create)
	r.Delete("/v1/assets/{id}", h.Delete)
	r.Get("/v1/places", h.Places)
	return r
}

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	router := newTestRouter(NewHTTPHandler(NewService(mockRepo, nil, 0)))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().ListPage(gomock.Any(), PageQuery{Filter: Filter{Kind: FilterAll}, Desc: true, Limit: DefaultFeedLimit + 1}).
			Return([]Asset{}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assets", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"items":[]`)
		assert.Contains(t, w.Body.String(), `"next_cursor":null`)
		assert.Contains(t, w.Body.String(), `"has_more":false`)
	})

	t.Run("place filter and limit", func(t *testing.T) {
		mockRepo.EXPECT().ListPage(gomock.Any(), PageQuery{
			Filter: Filter{Kind: FilterPlace, Country: "Вьетнам", City: "Нячанг"},
			Limit:  11,
		}).Return(nil, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/assets?limit=10&order=asc&country=%D0%92%D1%8C%D0%B5%D1%82%D0%BD%D0%B0%D0%BC&city=%D0%9D%D1%8F%D1%87%D0%B0%D0%BD%D0%B3", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	for name, query := range map[string]string{
		"country without city": "?country=Vietnam",
		"unknown with place":   "?unknown=true&country=Vietnam&city=Hanoi",
		"bad limit":            "?limit=ten",
		"bad order":            "?order=sideways",
		"bad cursor":           "?cursor=%21%21%21",
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assets"+query, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("storage error", func(t *testing.T) {
		mockRepo.EXPECT().ListPage(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assets", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	router := newTestRouter(NewHTTPHandler(NewService(mockRepo, nil, 0)))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testAssetID).
			Return(Asset{ID: testAssetID, MediaKind: MediaPhoto, MediaURL: "https://x/a.jpg"}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assets/"+testAssetID, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"media_type":"PHOTO"`)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testAssetID).Return(Asset{}, ErrNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assets/"+testAssetID, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assets/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	router := newTestRouter(NewHTTPHandler(NewService(mockRepo, nil, 0)))

	withUser := func(r *http.Request) *http.Request {
		return r.WithContext(httpx.ContextWithUser(r.Context(), "5b0e3c1a-8f1e-4d67-9a52-3f2d7c1b9e01", httpx.RoleAdmin))
	}

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *Asset) error {
			assert.Equal(t, MediaVideo, a.MediaKind)
			assert.Nil(t, a.Caption, "blank caption becomes null")
			a.ID = testAssetID
			a.CreatedAt = time.Now()
			return nil
		})

		body := `{"media_type":"VIDEO","media_url":"https://res.cloudinary.com/demo/video/upload/a.mp4","caption":"  "}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader(body))))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), testAssetID)
	})

	t.Run("duplicate external id", func(t *testing.T) {
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(ErrDuplicateExternalID)

		body := `{"media_type":"PHOTO","media_url":"https://x.test/a.jpg","external_id":"travel/a"}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader(body))))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("owner row missing", func(t *testing.T) {
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(ErrUnknownOwner)

		body := `{"media_type":"PHOTO","media_url":"https://x.test/b.jpg"}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader(body))))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "UNKNOWN_OWNER")
	})

	t.Run("validation error", func(t *testing.T) {
		body := `{"media_type":"GIF","media_url":""}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader(body))))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader("{"))))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no user", func(t *testing.T) {
		body := `{"media_type":"PHOTO","media_url":"https://x.test/a.jpg"}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	router := newTestRouter(NewHTTPHandler(NewService(mockRepo, nil, 0)))

	t.Run("deleted", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testAssetID).Return(Asset{ID: testAssetID}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/assets/"+testAssetID, nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testAssetID).Return(Asset{}, ErrNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/assets/"+testAssetID, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Places(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	router := newTestRouter(NewHTTPHandler(NewService(mockRepo, nil, 0)))

	mockRepo.EXPECT().Places(gomock.Any()).Return([]PlaceCount{
		{Country: "Vietnam", City: "Hanoi", Count: 2},
	}, 3, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/places", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unknown":{"count":3}`)
	assert.Contains(t, w.Body.String(), `"city":"Hanoi"`)
}
