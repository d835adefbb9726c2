package mapping

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Validator confirms a candidate ticker against the market data
// provider. ok is true only for common equities; a known ticker of
// another class returns its quote type with ok false.
type Validator interface {
	ValidateTicker(ctx context.Context, ticker string) (quoteType string, ok bool, err error)
}

// Exchange prefixes the broker prepends to US listings.
var epicPrefixes = []string{"US.", "USA.", "NYSE.", "NASDAQ.", "NAS."}

// Resolver maps broker epics to provider tickers. Candidates are
// derived from the epic and each is confirmed against the provider
// before the mapping is cached. Resolution is idempotent per epic and
// concurrent calls for the same epic perform the work once.
type Resolver struct {
	repo      Repository
	validator Validator
	manual    map[string]string // epic -> ticker overrides
	log       *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewResolver(repo Repository, validator Validator, manual map[string]string, log *logger.Logger) *Resolver {
	if manual == nil {
		manual = map[string]string{}
	}
	return &Resolver{
		repo:      repo,
		validator: validator,
		manual:    manual,
		log:       log.WithField("component", "mapping"),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Resolve returns the validated ticker for an instrument. A ticker the
// provider knows but classifies as a fund fails with ErrNonEquity; an
// epic no candidate resolves fails with ErrNoValidMapping.
func (r *Resolver) Resolve(ctx context.Context, inst contracts.Instrument) (contracts.SymbolMapping, error) {
	lock := r.epicLock(inst.Epic)
	lock.Lock()
	defer lock.Unlock()

	if m, ok, err := r.repo.Get(ctx, inst.Epic); err != nil {
		return contracts.SymbolMapping{}, err
	} else if ok {
		return m, nil
	}

	if ticker, ok := r.manual[inst.Epic]; ok {
		m := contracts.SymbolMapping{
			Epic:        inst.Epic,
			Ticker:      ticker,
			Confidence:  contracts.MappingManual,
			ValidatedAt: time.Now().UTC(),
		}
		if err := r.repo.Put(ctx, m); err != nil {
			return contracts.SymbolMapping{}, err
		}
		return m, nil
	}

	for _, cand := range Candidates(inst.Epic) {
		quoteType, isEquity, err := r.validator.ValidateTicker(ctx, cand)
		if err != nil {
			r.log.WithError(err).WithFields(map[string]interface{}{
				"epic": inst.Epic, "candidate": cand,
			}).Warn("Candidate validation failed, trying next")
			continue
		}
		if quoteType == "" {
			continue
		}
		if !isEquity {
			return contracts.SymbolMapping{},
				fmt.Errorf("%s maps to %s (%s): %w", inst.Epic, cand, quoteType, contracts.ErrNonEquity)
		}

		confidence := contracts.MappingPattern
		if cand == inst.Epic {
			confidence = contracts.MappingExact
		}
		m := contracts.SymbolMapping{
			Epic:        inst.Epic,
			Ticker:      cand,
			Confidence:  confidence,
			ValidatedAt: time.Now().UTC(),
		}
		if err := r.repo.Put(ctx, m); err != nil {
			return contracts.SymbolMapping{}, err
		}
		r.log.WithFields(map[string]interface{}{
			"epic": inst.Epic, "ticker": cand, "confidence": string(confidence),
		}).Debug("Resolved symbol mapping")
		return m, nil
	}

	return contracts.SymbolMapping{}, fmt.Errorf("epic %s: %w", inst.Epic, contracts.ErrNoValidMapping)
}

// Candidates derives ticker candidates from a broker epic, most
// specific first, without duplicates.
func Candidates(epic string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	base := epic
	for _, prefix := range epicPrefixes {
		if strings.HasPrefix(epic, prefix) {
			base = strings.TrimPrefix(epic, prefix)
			break
		}
	}

	add(base)
	// Share classes arrive as BRK.B or BRK_B. The provider wants BRK-B.
	add(strings.ReplaceAll(strings.ReplaceAll(base, ".", "-"), "_", "-"))
	// Country-suffixed epics like AAPL.US keep their leading segment.
	if i := strings.IndexAny(base, "._"); i > 0 {
		add(base[:i])
	}
	add(epic)
	return out
}

func (r *Resolver) epicLock(epic string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[epic]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[epic] = lock
	}
	return lock
}
