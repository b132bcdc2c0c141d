package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
)

// DAMDeleter removes the backing asset from the provider.
type DAMDeleter interface {
	DeleteResource(ctx context.Context, publicID string, kind cloudinary.ResourceKind) error
}

// Service provides catalog reads and administrative writes.
type Service struct {
	repo          Repository
	dam           DAMDeleter
	deleteTimeout time.Duration
}

// NewService creates a catalog service. dam may be nil when the provider is
// not configured; deletes then only touch the catalog.
func NewService(repo Repository, dam DAMDeleter, deleteTimeout time.Duration) *Service {
	if deleteTimeout <= 0 {
		deleteTimeout = 10 * time.Second
	}
	return &Service{repo: repo, dam: dam, deleteTimeout: deleteTimeout}
}

// CreateInput is an asset entered by hand rather than imported.
type CreateInput struct {
	UserID     string     `json:"-" validate:"required,uuid"`
	MediaKind  MediaKind  `json:"media_type" validate:"required,oneof=PHOTO VIDEO AUDIO"`
	MediaURL   string     `json:"media_url" validate:"required,url,max=2048"`
	ExternalID *string    `json:"external_id" validate:"omitempty,max=512"`
	Folder     *string    `json:"folder" validate:"omitempty,max=1024"`
	Caption    *string    `json:"caption" validate:"omitempty,max=2000"`
	Country    *string    `json:"country" validate:"omitempty,max=200"`
	City       *string    `json:"city" validate:"omitempty,max=200"`
	Lat        *float64   `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng        *float64   `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	CreatedAt  *time.Time `json:"created_at"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Asset, error) {
	if in.UserID == "" {
		return Asset{}, ErrOwnerRequired
	}
	if in.MediaURL == "" {
		return Asset{}, ErrNoMediaURL
	}
	if !in.MediaKind.Valid() {
		return Asset{}, fmt.Errorf("unknown media kind %q", in.MediaKind)
	}

	a := Asset{
		UserID:     in.UserID,
		MediaKind:  in.MediaKind,
		MediaURL:   in.MediaURL,
		ExternalID: in.ExternalID,
		Folder:     in.Folder,
		Caption:    in.Caption,
		Country:    in.Country,
		City:       in.City,
		Lat:        in.Lat,
		Lng:        in.Lng,
	}
	if in.CreatedAt != nil {
		a.CreatedAt = in.CreatedAt.UTC()
	}
	normalize(&a)

	if err := s.repo.Insert(ctx, &a); err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Asset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Asset{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes the asset from the catalog and then asks the provider to
// delete the backing resource. Provider failures are logged only.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	a, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if s.dam == nil || a.ExternalID == nil {
		return nil
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deleteTimeout)
	defer cancel()
	if err := s.dam.DeleteResource(dctx, *a.ExternalID, a.MediaKind.ResourceKind()); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("asset_id", a.ID).
			Str("external_id", *a.ExternalID).
			Msg("dam delete failed, catalog row already removed")
	}
	return nil
}
