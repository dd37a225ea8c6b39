package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"

	"github.com/rs/zerolog"
)

const playerColumns = `id, name, position, headshot_url, team_id, state, contract_value,
	year_contract_expires, year_acquired, end_of_free_agency, version`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Create inserts a new player aggregate at version 1.
func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPlayer(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player %s: %w", p.ID, err)
	}
	p.MarkCommitted(1)
	return nil
}

// CreateBatch inserts players in transactions of constants.DBBatchSize.
func (r *PlayerRepository) CreateBatch(ctx context.Context, players []*domain.Player) error {
	for i := 0; i < len(players); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(players) {
			end = len(players)
		}
		if err := r.createBatch(ctx, players[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) createBatch(ctx context.Context, players []*domain.Player) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range players {
		if err := insertPlayer(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player batch: %w", err)
	}
	for _, p := range players {
		p.MarkCommitted(1)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	rec, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", id, err)
	}
	return r.restore(ctx, r.db, rec)
}

// ListDue returns players in state whose end of free agency is at or before now.
// Records that fail to restore are logged and skipped.
func (r *PlayerRepository) ListDue(ctx context.Context, state domain.State, now time.Time) ([]*domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players
		WHERE state = ? AND end_of_free_agency <= ?
		ORDER BY end_of_free_agency, id`,
		string(state), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due players: %w", err)
	}

	var recs []domain.PlayerRecord
	for rows.Next() {
		rec, err := scanPlayer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	players := make([]*domain.Player, 0, len(recs))
	for _, rec := range recs {
		p, err := r.restore(ctx, r.db, rec)
		if err != nil {
			r.logger.Error().Err(err).Str("player_id", rec.ID).Msg("skipping unreadable player")
			continue
		}
		players = append(players, p)
	}

	r.logger.Debug().
		Str("state", string(state)).
		Time("now", now).
		Int("count", len(players)).
		Msg("loaded due players")
	return players, nil
}

// ContractValuesForTeam returns the contract values a team's cap is charged for.
func (r *PlayerRepository) ContractValuesForTeam(ctx context.Context, teamID string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state, contract_value FROM players WHERE team_id = ? ORDER BY id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts for team %s: %w", teamID, err)
	}
	defer rows.Close()

	var values []int
	for rows.Next() {
		var state string
		var value int
		if err := rows.Scan(&state, &value); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		if domain.CountsAgainstCap(domain.State(state)) {
			values = append(values, value)
		}
	}
	return values, rows.Err()
}

// Commit persists a mutated aggregate if nobody else committed it since it was loaded.
// The player row and its bid ledger are written in one transaction; on success the
// aggregate's version is advanced.
func (r *PlayerRepository) Commit(ctx context.Context, p *domain.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	rec := p.Record()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE players SET
			name = ?, position = ?, headshot_url = ?, team_id = ?, state = ?, contract_value = ?,
			year_contract_expires = ?, year_acquired = ?, end_of_free_agency = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		rec.Name, rec.Position, rec.HeadshotURL, nullString(rec.TeamID), string(rec.State),
		rec.ContractValue, nullInt(rec.YearContractExpires), nullInt(rec.YearAcquired),
		nullMillis(rec.EndOfFreeAgency), time.Now().UTC(),
		rec.ID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", rec.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for player %s: %w", rec.ID, err)
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM players WHERE id = ?`, rec.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("player %s: %w", rec.ID, domain.ErrNotFound)
		}
		r.logger.Warn().Str("player_id", rec.ID).Int64("version", rec.Version).Msg("stale player commit rejected")
		return fmt.Errorf("player %s changed since version %d: %w", rec.ID, rec.Version, domain.ErrConcurrencyConflict)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE player_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear bids for player %s: %w", rec.ID, err)
	}
	if err := insertBids(ctx, tx, rec.ID, rec.Bids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player %s: %w", rec.ID, err)
	}
	p.MarkCommitted(rec.Version + 1)

	r.logger.Debug().
		Str("player_id", rec.ID).
		Str("state", string(rec.State)).
		Int64("version", rec.Version+1).
		Int("bids", len(rec.Bids)).
		Msg("player committed")
	return nil
}

func (r *PlayerRepository) restore(ctx context.Context, q querier, rec domain.PlayerRecord) (*domain.Player, error) {
	bids, err := loadBids(ctx, q, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Bids = bids
	return domain.RestorePlayer(rec)
}

func insertPlayer(ctx context.Context, tx *sql.Tx, p *domain.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	rec := p.Record()
	now := time.Now().UTC()

	_, err := tx.ExecContext(ctx, `INSERT INTO players (`+playerColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		rec.ID, rec.Name, rec.Position, rec.HeadshotURL, nullString(rec.TeamID), string(rec.State),
		rec.ContractValue, nullInt(rec.YearContractExpires), nullInt(rec.YearAcquired),
		nullMillis(rec.EndOfFreeAgency), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player %s: %w", rec.ID, err)
	}
	return insertBids(ctx, tx, rec.ID, rec.Bids)
}

func insertBids(ctx context.Context, tx *sql.Tx, playerID string, bids []domain.Bid) error {
	for seq, b := range bids {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bids (id, player_id, team_id, amount, created_on, seq) VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, playerID, b.TeamID, b.Amount, b.CreatedOn.UnixMilli(), seq,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bid %s for player %s: %w", b.ID, playerID, err)
		}
	}
	return nil
}

func loadBids(ctx context.Context, q querier, playerID string) ([]domain.Bid, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, team_id, amount, created_on FROM bids WHERE player_id = ? ORDER BY seq`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bids for player %s: %w", playerID, err)
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var b domain.Bid
		var createdOn int64
		if err := rows.Scan(&b.ID, &b.TeamID, &b.Amount, &createdOn); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		b.CreatedOn = time.UnixMilli(createdOn).UTC()
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func scanPlayer(row rowScanner) (domain.PlayerRecord, error) {
	var (
		rec          domain.PlayerRecord
		teamID       sql.NullString
		state        string
		yearExpires  sql.NullInt64
		yearAcquired sql.NullInt64
		endMillis    sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Position, &rec.HeadshotURL, &teamID, &state,
		&rec.ContractValue, &yearExpires, &yearAcquired, &endMillis, &rec.Version)
	if err != nil {
		return domain.PlayerRecord{}, err
	}
	rec.TeamID = teamID.String
	rec.State = domain.State(state)
	if yearExpires.Valid {
		v := int(yearExpires.Int64)
		rec.YearContractExpires = &v
	}
	if yearAcquired.Valid {
		v := int(yearAcquired.Int64)
		rec.YearAcquired = &v
	}
	if endMillis.Valid {
		end := time.UnixMilli(endMillis.Int64).UTC()
		rec.EndOfFreeAgency = &end
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
