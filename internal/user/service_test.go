package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Randallflagg19/travel/internal/httpx"
)

const adminID = "a7c4e2d9-1b3f-4e58-8c6a-0d9f5e4b2a10"

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Ensure(ctx context.Context, email, role string) (User, error) {
	args := m.Called(ctx, email, role)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func TestService_Ensure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("Ensure", ctx, "admin@example.com", "ADMIN").Return(User{ID: adminID, Email: "admin@example.com", Role: "ADMIN"}, nil)
	svc := NewService(repo)

	u, err := svc.Ensure(ctx, "  Admin@Example.com ", "admin")
	require.NoError(t, err)
	assert.Equal(t, adminID, u.ID)

	_, err = svc.Ensure(ctx, "not-an-email", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	repo.AssertExpectations(t)
}

func TestService_ResolveOwner(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("GetByEmail", ctx, "admin@example.com").Return(User{ID: adminID}, nil)
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(User{}, ErrNotFound)
	svc := NewService(repo)

	id, err := svc.ResolveOwner(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, adminID, id)

	_, err = svc.ResolveOwner(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPHandler_Me(t *testing.T) {
	repo := new(mockRepo)
	h := NewHTTPHandler(NewService(repo))

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		repo.On("GetByID", mock.Anything, adminID).Return(User{ID: adminID, Email: "admin@example.com", Role: "ADMIN"}, nil).Once()
		r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), adminID, "ADMIN"))
		w := httptest.NewRecorder()

		h.Me(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin@example.com")
	})

	t.Run("storage error", func(t *testing.T) {
		repo.On("GetByID", mock.Anything, adminID).Return(User{}, errors.New("db down")).Once()
		r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), adminID, "ADMIN"))
		w := httptest.NewRecorder()

		h.Me(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
