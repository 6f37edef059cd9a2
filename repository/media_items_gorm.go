package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainPrefs "github.com/novareel/novareel/domains/prefs"
)

// --- Persistence Model ---

// One row per (user, collection, catalog item). Collection is
// "favorites" or "watchlist"; Payload keeps the full catalog document.
type mediaItemModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	UserID      string `gorm:"uniqueIndex:idx_media_items_user_coll_catalog,priority:1;not null"`
	Collection  string `gorm:"uniqueIndex:idx_media_items_user_coll_catalog,priority:2;not null"`
	CatalogID   int64  `gorm:"uniqueIndex:idx_media_items_user_coll_catalog,priority:3;not null"`
	Title       string `gorm:"not null"`
	MediaKind   string `gorm:"not null"`
	PosterPath  string
	Overview    string `gorm:"type:text"`
	Rating      float64
	ReleaseDate string
	Payload     string    `gorm:"type:text;default:'{}'"`
	AddedAt     time.Time `gorm:"index;not null"`
}

func (mediaItemModel) TableName() string {
	return "user_media_items"
}

const (
	CollectionFavorites = "favorites"
	CollectionWatchlist = "watchlist"
)

// --- Repository Implementation ---

type MediaItemGormRepository struct {
	db *gorm.DB
}

func NewMediaItemGormRepository(db *gorm.DB) *MediaItemGormRepository {
	return &MediaItemGormRepository{db: db}
}

func (r *MediaItemGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&mediaItemModel{})
}

// Add inserts the item, or refreshes the stored payload when the user
// already saved it. Idempotent per (user, collection, catalog item).
func (r *MediaItemGormRepository) Add(ctx context.Context, userID, collection string, item domainPrefs.MediaItem) (domainPrefs.MediaItem, error) {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	model := toMediaItemModel(userID, collection, item)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "collection"}, {Name: "catalog_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "media_kind", "poster_path", "overview", "rating", "release_date", "payload",
		}),
	}).Create(&model).Error
	if err != nil {
		return domainPrefs.MediaItem{}, err
	}

	var stored mediaItemModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND collection = ? AND catalog_id = ?", userID, collection, item.CatalogID).
		First(&stored).Error; err != nil {
		return domainPrefs.MediaItem{}, err
	}
	return fromMediaItemModel(stored), nil
}

func (r *MediaItemGormRepository) Remove(ctx context.Context, userID, collection string, catalogID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND collection = ? AND catalog_id = ?", userID, collection, catalogID).
		Delete(&mediaItemModel{}).Error
}

// List returns the user's items newest first.
func (r *MediaItemGormRepository) List(ctx context.Context, userID, collection string) ([]domainPrefs.MediaItem, error) {
	var models []mediaItemModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND collection = ?", userID, collection).
		Order("added_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	items := make([]domainPrefs.MediaItem, 0, len(models))
	for _, m := range models {
		items = append(items, fromMediaItemModel(m))
	}
	return items, nil
}

func (r *MediaItemGormRepository) Exists(ctx context.Context, userID, collection string, catalogID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&mediaItemModel{}).
		Where("user_id = ? AND collection = ? AND catalog_id = ?", userID, collection, catalogID).
		Count(&count).Error
	return count > 0, err
}

// --- Mapping ---

func toMediaItemModel(userID, collection string, item domainPrefs.MediaItem) mediaItemModel {
	payload := "{}"
	if len(item.Payload) > 0 {
		payload = string(item.Payload)
	}
	return mediaItemModel{
		UserID:      userID,
		Collection:  collection,
		CatalogID:   item.CatalogID,
		Title:       item.Title,
		MediaKind:   item.MediaKind,
		PosterPath:  item.PosterPath,
		Overview:    item.Overview,
		Rating:      item.Rating,
		ReleaseDate: item.ReleaseDate,
		Payload:     payload,
		AddedAt:     item.AddedAt,
	}
}

func fromMediaItemModel(m mediaItemModel) domainPrefs.MediaItem {
	var payload json.RawMessage
	if m.Payload != "" && m.Payload != "{}" {
		payload = json.RawMessage(m.Payload)
	}
	return domainPrefs.MediaItem{
		CatalogID:   m.CatalogID,
		Title:       m.Title,
		MediaKind:   m.MediaKind,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
		Rating:      m.Rating,
		ReleaseDate: m.ReleaseDate,
		Payload:     payload,
		AddedAt:     m.AddedAt,
	}
}
