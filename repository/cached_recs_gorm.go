package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainRecommend "github.com/novareel/novareel/domains/recommend"
)

// --- Persistence Model ---

// One document per user: the last favorites-derived recommendation set.
// Last write wins, no multi-row guarantees needed.
type cachedRecsModel struct {
	UserID          string    `gorm:"primaryKey"`
	Recommendations string    `gorm:"type:text;default:'[]'"`
	Reasoning       string    `gorm:"type:text"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (cachedRecsModel) TableName() string {
	return "cached_recommendations"
}

// --- Repository Implementation ---

type CachedRecsGormRepository struct {
	db *gorm.DB
}

func NewCachedRecsGormRepository(db *gorm.DB) *CachedRecsGormRepository {
	return &CachedRecsGormRepository{db: db}
}

func (r *CachedRecsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&cachedRecsModel{})
}

// Get returns the stored set and its write time, found=false when the
// user has none yet.
func (r *CachedRecsGormRepository) Get(ctx context.Context, userID string) (recs []domainRecommend.Recommendation, reasoning string, updatedAt time.Time, found bool, err error) {
	var m cachedRecsModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", time.Time{}, false, nil
		}
		return nil, "", time.Time{}, false, err
	}
	if err := json.Unmarshal([]byte(m.Recommendations), &recs); err != nil {
		return nil, "", time.Time{}, false, err
	}
	return recs, m.Reasoning, m.UpdatedAt, true, nil
}

func (r *CachedRecsGormRepository) Save(ctx context.Context, userID string, recs []domainRecommend.Recommendation, reasoning string) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	model := cachedRecsModel{
		UserID:          userID,
		Recommendations: string(data),
		Reasoning:       reasoning,
		UpdatedAt:       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"recommendations", "reasoning", "updated_at"}),
	}).Create(&model).Error
}
