package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/ledger"
	"scripfolio/internal/models"
)

// SplitService manages split events.
type SplitService struct {
	db *gorm.DB
}

// NewSplitService creates a new split service.
func NewSplitService(db *gorm.DB) *SplitService {
	return &SplitService{db: db}
}

// List returns all active split events, newest split date first.
func (s *SplitService) List(ctx context.Context) ([]models.SplitEvent, error) {
	var events []models.SplitEvent
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("split_date desc, symbol asc").
		Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return events, nil
}

// Create stores a split event. Ratios must both be positive; the ledger
// refuses to apply anything else, so the API refuses to store it.
func (s *SplitService) Create(ctx context.Context, event models.SplitEvent) (*models.SplitEvent, error) {
	event.Symbol = strings.ToUpper(strings.TrimSpace(event.Symbol))
	if event.Symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}
	if event.RatioFrom <= 0 || event.RatioTo <= 0 {
		return nil, apperrors.ErrInvalidSplitRatio
	}
	event.ID = 0
	event.Active = true

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &event, nil
}

// Delete deactivates a split event. The next replay runs without it.
func (s *SplitService) Delete(ctx context.Context, id uint) error {
	var event models.SplitEvent
	if err := s.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrSplitNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !event.Active {
		return apperrors.ErrSplitNotFound
	}
	if err := s.db.WithContext(ctx).Model(&event).Update("active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// activeSplitEvents loads active events in ledger form.
func activeSplitEvents(ctx context.Context, db *gorm.DB) ([]ledger.SplitEvent, error) {
	var rows []models.SplitEvent
	if err := db.WithContext(ctx).Where("active = ?", true).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	events := make([]ledger.SplitEvent, len(rows))
	for i, r := range rows {
		events[i] = ledger.SplitEvent{
			Symbol:    r.Symbol,
			SplitDate: r.SplitDate,
			RatioFrom: r.RatioFrom,
			RatioTo:   r.RatioTo,
		}
	}
	return events, nil
}
