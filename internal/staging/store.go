// Package staging holds ephemeral preview state: staged upload batches
// awaiting commit and the progress records of long-running parses.
// Nothing here is durable; a process restart drops every uncommitted
// batch.
package staging

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/ledger"
	"scripfolio/internal/parser"
	"scripfolio/internal/reconcile"
	"scripfolio/internal/uuid"
)

// State is the lifecycle state of a staged batch.
type State string

const (
	StatePreviewed State = "PREVIEWED"
	StateCommitted State = "COMMITTED"
	StateDiscarded State = "DISCARDED"
)

// Summary is the preview roll-up shown to the caller and kept with the
// batch for the commit log.
type Summary struct {
	TradeCount               int      `json:"trade_count"`
	ContractNoteCount        int      `json:"contract_note_count"`
	ContractTradeRowCount    int      `json:"contract_trade_row_count"`
	ChargeRowCount           int      `json:"charge_row_count"`
	ParsedSheetCount         int      `json:"parsed_sheet_count"`
	MissingContractNoteDates []string `json:"missing_contract_note_dates"`
	Warnings                 []string `json:"warnings"`
}

// Batch is an immutable preview result awaiting commit. After reaching
// PREVIEWED it is never mutated except by the single commit or discard
// transition.
type Batch struct {
	ID            string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	State         State
	TradebookFile string
	ContractFiles []string

	TradeRows         []parser.TradeRow
	ContractTradeRows []parser.ContractTradeRow
	ChargeRows        []parser.ChargeRow
	DailyCharges      []ledger.DailyCharges
	Matches           []reconcile.Match
	Summary           Summary
}

// retention keeps expired batches around as tombstones long enough for a
// late commit call to get STAGING_EXPIRED instead of STAGING_NOT_FOUND.
const retention = 24 * time.Hour

// Store is the id-keyed staging batch store. Logical expiry is tracked
// per batch against the configured TTL; the cache janitor reclaims
// memory after the retention window.
type Store struct {
	ttl     time.Duration
	mu      sync.Mutex
	batches *cache.Cache
}

// NewStore creates a staging store whose batches expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		batches: cache.New(retention, 10*time.Minute),
	}
}

// Add registers a freshly previewed batch, assigning its id and expiry.
func (s *Store) Add(b *Batch) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.ExpiresAt = now.Add(s.ttl)
	b.State = StatePreviewed
	s.batches.Set(b.ID, b, cache.DefaultExpiration)
	return b
}

// Get returns a batch by id. An unknown id is STAGING_NOT_FOUND; a known
// but never-committed batch past its TTL is STAGING_EXPIRED.
func (s *Store) Get(id string) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *Store) get(id string) (*Batch, error) {
	v, ok := s.batches.Get(id)
	if !ok {
		return nil, apperrors.ErrStagingNotFound
	}
	b := v.(*Batch)
	if b.State == StatePreviewed && time.Now().After(b.ExpiresAt) {
		return nil, apperrors.ErrStagingExpired
	}
	return b, nil
}

// Transition moves a batch out of PREVIEWED. Only PREVIEWED batches can
// transition; a second commit gets ALREADY_COMMITTED, a commit after
// discard gets BATCH_DISCARDED.
func (s *Store) Transition(id string, to State) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.get(id)
	if err != nil {
		return nil, err
	}
	switch b.State {
	case StateCommitted:
		return nil, apperrors.ErrAlreadyCommitted
	case StateDiscarded:
		return nil, apperrors.ErrBatchDiscarded
	}
	b.State = to
	return b, nil
}
