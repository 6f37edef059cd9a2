package usecase

import (
	"context"
	"time"

	domainPrefs "github.com/novareel/novareel/domains/prefs"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/repository"
	"github.com/novareel/novareel/validations"
)

type prefsService struct {
	items *repository.MediaItemGormRepository
}

func NewPrefsService(items *repository.MediaItemGormRepository) domainPrefs.IPrefsUsecase {
	return &prefsService{items: items}
}

func requireUser(userID string) error {
	if userID == "" {
		return pkgError.UnauthenticatedError("user identity is required")
	}
	return nil
}

func (service prefsService) add(ctx context.Context, collection string, request domainPrefs.AddItemRequest) (domainPrefs.MediaItem, error) {
	if err := validations.ValidateAddItem(ctx, request); err != nil {
		return domainPrefs.MediaItem{}, err
	}
	item := domainPrefs.MediaItem{
		CatalogID:   request.CatalogID,
		Title:       request.Title,
		MediaKind:   request.MediaKind,
		PosterPath:  request.PosterPath,
		Overview:    request.Overview,
		Rating:      request.Rating,
		ReleaseDate: request.ReleaseDate,
		Payload:     request.Payload,
		AddedAt:     time.Now().UTC(),
	}
	stored, err := service.items.Add(ctx, request.UserID, collection, item)
	if err != nil {
		return domainPrefs.MediaItem{}, pkgError.InternalError("failed to save item: " + err.Error())
	}
	return stored, nil
}

func (service prefsService) AddFavorite(ctx context.Context, request domainPrefs.AddItemRequest) (domainPrefs.MediaItem, error) {
	return service.add(ctx, repository.CollectionFavorites, request)
}

func (service prefsService) RemoveFavorite(ctx context.Context, userID string, catalogID int64) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return service.items.Remove(ctx, userID, repository.CollectionFavorites, catalogID)
}

func (service prefsService) ListFavorites(ctx context.Context, userID string) ([]domainPrefs.MediaItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return service.items.List(ctx, userID, repository.CollectionFavorites)
}

func (service prefsService) IsFavorite(ctx context.Context, userID string, catalogID int64) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	return service.items.Exists(ctx, userID, repository.CollectionFavorites, catalogID)
}

func (service prefsService) AddToWatchlist(ctx context.Context, request domainPrefs.AddItemRequest) (domainPrefs.MediaItem, error) {
	return service.add(ctx, repository.CollectionWatchlist, request)
}

func (service prefsService) RemoveFromWatchlist(ctx context.Context, userID string, catalogID int64) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return service.items.Remove(ctx, userID, repository.CollectionWatchlist, catalogID)
}

func (service prefsService) ListWatchlist(ctx context.Context, userID string) ([]domainPrefs.MediaItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return service.items.List(ctx, userID, repository.CollectionWatchlist)
}

func (service prefsService) IsInWatchlist(ctx context.Context, userID string, catalogID int64) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	return service.items.Exists(ctx, userID, repository.CollectionWatchlist, catalogID)
}
