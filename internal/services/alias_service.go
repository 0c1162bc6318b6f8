package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/models"
)

// AliasService manages symbol aliases for price lookups.
type AliasService struct {
	db *gorm.DB
}

// NewAliasService creates a new alias service.
func NewAliasService(db *gorm.DB) *AliasService {
	return &AliasService{db: db}
}

// List returns all active aliases ordered by source symbol.
func (s *AliasService) List(ctx context.Context) ([]models.SymbolAlias, error) {
	var aliases []models.SymbolAlias
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("from_symbol asc").
		Find(&aliases).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return aliases, nil
}

// Upsert stores the given from->to pairs, replacing any existing mapping
// for the same source symbol. Symbols are uppercased and trimmed; pairs
// with a blank side are skipped. Returns the number of pairs stored.
func (s *AliasService) Upsert(ctx context.Context, pairs map[string]string) (int, error) {
	var rows []models.SymbolAlias
	for from, to := range pairs {
		from = strings.ToUpper(strings.TrimSpace(from))
		to = strings.ToUpper(strings.TrimSpace(to))
		if from == "" || to == "" {
			continue
		}
		rows = append(rows, models.SymbolAlias{FromSymbol: from, ToSymbol: to, Active: true})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"to_symbol", "active", "updated_at"}),
		}).
		Create(&rows).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(rows), nil
}

// Map returns the active aliases as a from->to lookup map.
func (s *AliasService) Map(ctx context.Context) (map[string]string, error) {
	aliases, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(aliases))
	for _, a := range aliases {
		m[a.FromSymbol] = a.ToSymbol
	}
	return m, nil
}
