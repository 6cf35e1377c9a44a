package repository

import (
	"context"
	"errors"
	"fmt"

	"focushub/internal/planner/domain"

	"gorm.io/gorm"
)

// CalendarRepo one calendar link per member
type CalendarRepo interface {
	AutoMigrate() error
	Find(ctx context.Context, userID string) (*domain.CalendarLink, error)
	Save(ctx context.Context, link *domain.CalendarLink) error
	Delete(ctx context.Context, userID string) error
}

type calendarRepo struct {
	db *gorm.DB
}

// NewCalendarRepo create CalendarRepo
func NewCalendarRepo(db *gorm.DB) CalendarRepo {
	return &calendarRepo{db: db}
}

func (r *calendarRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.CalendarLink{})
}

func (r *calendarRepo) Find(ctx context.Context, userID string) (*domain.CalendarLink, error) {
	var l domain.CalendarLink
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: calendar link of %s", domain.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Save inserts or replaces the member's link
func (r *calendarRepo) Save(ctx context.Context, link *domain.CalendarLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// Delete missing links are not an error
func (r *calendarRepo) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CalendarLink{}).Error
}
