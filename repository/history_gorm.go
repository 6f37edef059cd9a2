package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainRecommend "github.com/novareel/novareel/domains/recommend"
)

// --- Persistence Model ---

type historyEntryModel struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"index:idx_history_user_query,priority:1;not null"`
	Query           string `gorm:"not null"`
	QueryKey        string `gorm:"index:idx_history_user_query,priority:2;not null"` // normalized for dedup
	Recommendations string `gorm:"type:text;default:'[]'"`
	Reasoning       string `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"index;not null"`
}

func (historyEntryModel) TableName() string {
	return "recommendation_history"
}

// --- Repository Implementation ---

type HistoryGormRepository struct {
	db *gorm.DB
}

func NewHistoryGormRepository(db *gorm.DB) *HistoryGormRepository {
	return &HistoryGormRepository{db: db}
}

func (r *HistoryGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&historyEntryModel{})
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Save records a query with its results. A repeat of the same query
// (case-insensitive, trimmed) within dedupWindow overwrites the earlier
// row instead of appending, keeping the newer payload.
func (r *HistoryGormRepository) Save(ctx context.Context, userID string, entry domainRecommend.HistoryEntry, dedupWindow time.Duration) (domainRecommend.HistoryEntry, error) {
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	recsJSON, err := json.Marshal(entry.Recommendations)
	if err != nil {
		return domainRecommend.HistoryEntry{}, err
	}
	queryKey := normalizeQuery(entry.Query)

	var existing historyEntryModel
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND query_key = ? AND created_at > ?", userID, queryKey, now.Add(-dedupWindow)).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Query = entry.Query
		existing.Recommendations = string(recsJSON)
		existing.Reasoning = entry.Reasoning
		existing.CreatedAt = entry.CreatedAt
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return domainRecommend.HistoryEntry{}, err
		}
		return fromHistoryModel(existing), nil
	case err == gorm.ErrRecordNotFound:
		model := historyEntryModel{
			ID:              uuid.New().String(),
			UserID:          userID,
			Query:           entry.Query,
			QueryKey:        queryKey,
			Recommendations: string(recsJSON),
			Reasoning:       entry.Reasoning,
			CreatedAt:       entry.CreatedAt,
		}
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return domainRecommend.HistoryEntry{}, err
		}
		return fromHistoryModel(model), nil
	default:
		return domainRecommend.HistoryEntry{}, err
	}
}

// List returns the user's history newest first.
func (r *HistoryGormRepository) List(ctx context.Context, userID string) ([]domainRecommend.HistoryEntry, error) {
	var models []historyEntryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entries := make([]domainRecommend.HistoryEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, fromHistoryModel(m))
	}
	return entries, nil
}

func (r *HistoryGormRepository) Remove(ctx context.Context, userID, entryID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, entryID).
		Delete(&historyEntryModel{}).Error
}

func (r *HistoryGormRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&historyEntryModel{}).Error
}

// Prune drops rows older than maxAge and, per user, anything beyond
// maxEntries, oldest first. Returns the number of deleted rows.
func (r *HistoryGormRepository) Prune(ctx context.Context, maxAge time.Duration, maxEntries int) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&historyEntryModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	deleted := result.RowsAffected

	var userIDs []string
	if err := r.db.WithContext(ctx).Model(&historyEntryModel{}).
		Distinct("user_id").Pluck("user_id", &userIDs).Error; err != nil {
		return deleted, err
	}
	for _, userID := range userIDs {
		var keep []string
		if err := r.db.WithContext(ctx).Model(&historyEntryModel{}).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(maxEntries).
			Pluck("id", &keep).Error; err != nil {
			return deleted, err
		}
		result := r.db.WithContext(ctx).
			Where("user_id = ? AND id NOT IN ?", userID, keep).
			Delete(&historyEntryModel{})
		if result.Error != nil {
			return deleted, result.Error
		}
		deleted += result.RowsAffected
	}
	return deleted, nil
}

func fromHistoryModel(m historyEntryModel) domainRecommend.HistoryEntry {
	var recs []domainRecommend.Recommendation
	_ = json.Unmarshal([]byte(m.Recommendations), &recs)
	return domainRecommend.HistoryEntry{
		ID:              m.ID,
		Query:           m.Query,
		Recommendations: recs,
		Reasoning:       m.Reasoning,
		CreatedAt:       m.CreatedAt,
	}
}
