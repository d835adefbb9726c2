package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/database"
)

// RunRecord is the run-level row persisted alongside candidates and
// exclusions.
type RunRecord struct {
	ID            int64     `json:"id"`
	RequestedDate time.Time `json:"requested_date"`
	AnchorDate    time.Time `json:"anchor_date"`
	Regressions   int       `json:"regressions"`
	UniverseSize  int       `json:"universe_size"`
	Survivors     int       `json:"survivors"`
	Excluded      int       `json:"excluded"`
	CreatedAt     time.Time `json:"created_at"`
}

// RunStore persists run history in Postgres.
type RunStore struct {
	db *database.DB
}

func NewRunStore(db *database.DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun writes the run row plus all candidates and exclusions in one
// transaction and returns the run id.
func (s *RunStore) SaveRun(ctx context.Context, run RunRecord, ranked []contracts.Candidate, exclusions []contracts.ExclusionRecord) (int64, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO edge10.runs
			(requested_date, anchor_date, regressions, universe_size, survivors, excluded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id`,
		run.RequestedDate, run.AnchorDate, run.Regressions,
		run.UniverseSize, run.Survivors, run.Excluded,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range ranked {
		batch.Queue(`
			INSERT INTO edge10.candidates
				(run_id, rank, epic, ticker, name, sector, composite,
				 day_strength, rel_volume, catalyst, market, vol_fit,
				 a_win_rate, a_loss_rate, a_ambig_rate, b_win_rate,
				 sample_a, sample_b, justification)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			runID, c.Rank, c.Instrument.Epic, c.Ticker, c.Instrument.Name, c.Features.Sector,
			c.Score.Composite,
			c.Score.Components.DayStrength, c.Score.Components.RelVolume,
			c.Score.Components.Catalyst, c.Score.Components.Market, c.Score.Components.VolFit,
			c.Labels.AWinRate, c.Labels.ALossRate, c.Labels.AAmbigRate, c.Labels.BWinRate,
			c.Labels.SampleA, c.Labels.SampleB, c.Justification)
	}
	for _, e := range exclusions {
		batch.Queue(`
			INSERT INTO edge10.exclusions (run_id, epic, stage, reason, detail)
			VALUES ($1, $2, $3, $4, $5)`,
			runID, e.Epic, string(e.Stage), string(e.Reason), e.Detail)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert run rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recent run row, or false when no run has
// been persisted yet.
func (s *RunStore) LatestRun(ctx context.Context) (RunRecord, bool, error) {
	var r RunRecord
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, requested_date, anchor_date, regressions,
		       universe_size, survivors, excluded, created_at
		FROM edge10.runs
		ORDER BY id DESC
		LIMIT 1`).Scan(
		&r.ID, &r.RequestedDate, &r.AnchorDate, &r.Regressions,
		&r.UniverseSize, &r.Survivors, &r.Excluded, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("latest run: %w", err)
	}
	return r, true, nil
}

// StoredCandidate is the API-facing candidate row.
type StoredCandidate struct {
	Rank          int     `json:"rank"`
	Epic          string  `json:"epic"`
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Composite     float64 `json:"composite"`
	AWinRate      float64 `json:"a_win_rate"`
	BWinRate      float64 `json:"b_win_rate"`
	SampleA       int     `json:"sample_a"`
	SampleB       int     `json:"sample_b"`
	Justification string  `json:"justification"`
}

// Candidates returns the ranked rows of a run, capped at limit.
func (s *RunStore) Candidates(ctx context.Context, runID int64, limit int) ([]StoredCandidate, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT rank, epic, ticker, name, sector, composite,
		       a_win_rate, b_win_rate, sample_a, sample_b, justification
		FROM edge10.candidates
		WHERE run_id = $1
		ORDER BY rank
		LIMIT $2`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []StoredCandidate
	for rows.Next() {
		var c StoredCandidate
		if err := rows.Scan(&c.Rank, &c.Epic, &c.Ticker, &c.Name, &c.Sector, &c.Composite,
			&c.AWinRate, &c.BWinRate, &c.SampleA, &c.SampleB, &c.Justification); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Exclusions returns the exclusion ledger of a run.
func (s *RunStore) Exclusions(ctx context.Context, runID int64) ([]contracts.ExclusionRecord, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT epic, stage, reason, detail
		FROM edge10.exclusions
		WHERE run_id = $1
		ORDER BY epic`, runID)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	defer rows.Close()

	var out []contracts.ExclusionRecord
	for rows.Next() {
		var e contracts.ExclusionRecord
		if err := rows.Scan(&e.Epic, &e.Stage, &e.Reason, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
