package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "req-1"))
	w := httptest.NewRecorder()

	JSONSuccess(w, req, map[string]string{"hello": "world"}, map[string]any{"page": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Meta    map[string]any    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "world", body.Data["hello"])
	assert.Equal(t, "req-1", body.Meta["request_id"])
	assert.EqualValues(t, 2, body.Meta["page"])
}

func TestJSONError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	JSONError(w, req, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
		[]ErrorDetail{{Field: "media_url", Message: "media_url is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	require.Len(t, body.Error.Details, 1)
	assert.Equal(t, "media_url", body.Error.Details[0].Field)
	assert.Nil(t, body.Meta)
}

func TestJSONNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	JSONNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

type sample struct {
	Name   string `json:"name" validate:"required,max=5"`
	URL    string `json:"media_url" validate:"required,url"`
	Kind   string `json:"kind" validate:"omitempty,oneof=PHOTO VIDEO"`
	Hidden string `json:"-" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(sample{Name: "ok", URL: "https://x.test/a.jpg", Hidden: "h"}))

	details := ValidateStruct(sample{Name: "toolong", URL: "nope", Kind: "AUDIO"})
	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Message
	}
	assert.Contains(t, byField["name"], "at most 5")
	assert.Contains(t, byField["media_url"], "valid URL")
	assert.Contains(t, byField["kind"], "one of")
	assert.Contains(t, byField["hidden"], "required")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Prefix string `json:"prefix"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prefix":"travel"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "travel", dst.Prefix)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prefix":"a","extra":1}`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prefix":"a"} {}`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
}
