package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/hashchain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) ports.VoteLedger {
	return &ledgerRepository{
		db: db,
	}
}

// Append extends a poll's chain by one vote inside a single transaction:
//
//  1. lock the poll's chain_tails row (FOR UPDATE) — this is the per-poll
//     serialization point; casts on other polls take other rows,
//  2. re-check participation under the lock,
//  3. insert a provisional vote row with a timestamp taken under the lock
//     (clock_timestamp, not the transaction start time, which may predate
//     the lock wait) and clamped strictly after the current tail vote,
//  4. read the timestamp back in its storage-normalized form,
//  5. compute hash and receipt code from the read-back fields,
//  6. finalize the vote row, record participation, advance the tail.
//
// Any failure before commit rolls the whole sequence back; readers never see
// a partially appended vote.
func (r *ledgerRepository) Append(ctx context.Context, req ports.AppendVote) (*domain.Vote, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tail sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT tail_hash FROM chain_tails WHERE poll_id = $1 FOR UPDATE`,
		req.PollID,
	).Scan(&tail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, storageErr("failed to lock chain tail", err)
	}

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM participations WHERE poll_id = $1 AND voter_id = $2`,
		req.PollID, req.VoterID,
	).Scan(&one)
	if err == nil {
		return nil, domain.ErrAlreadyVoted
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("failed to check participation", err)
	}

	voteID := uuid.New()
	storedVoter := uuid.NullUUID{UUID: req.VoterID, Valid: !req.Anonymous}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO votes (id, poll_id, voter_id, option_id, cast_at)
		 VALUES ($1, $2, $3, $4, GREATEST(
			clock_timestamp(),
			COALESCE((SELECT max(cast_at) + interval '1 microsecond' FROM votes WHERE poll_id = $2), clock_timestamp())
		 ))`,
		voteID, req.PollID, storedVoter, req.OptionID,
	)
	if err != nil {
		return nil, storageErr("failed to insert provisional vote", err)
	}

	// The hash input must be the timestamp as the ledger stores it, not the
	// wall clock we saw before the insert, or re-verification would fail.
	vote := &domain.Vote{
		ID:          voteID,
		PollID:      req.PollID,
		OptionID:    req.OptionID,
		HashVersion: hashchain.VersionV1,
	}
	err = tx.QueryRowContext(ctx, `SELECT cast_at FROM votes WHERE id = $1`, voteID).Scan(&vote.CastAt)
	if err != nil {
		return nil, storageErr("failed to reload vote timestamp", err)
	}
	vote.CastAt = hashchain.CanonicalTime(vote.CastAt)

	if !req.Anonymous {
		voterID := req.VoterID
		vote.VoterID = &voterID
	}
	if tail.Valid {
		prev := tail.String
		vote.PrevHash = &prev
	}

	hash, err := hashchain.HashVote(vote)
	if err != nil {
		return nil, fmt.Errorf("failed to compute vote hash: %w", err)
	}
	vote.VoteHash = hash
	vote.ReceiptCode = hashchain.DeriveReceiptCode(hash)

	_, err = tx.ExecContext(ctx,
		`UPDATE votes SET prev_hash = $1, vote_hash = $2, receipt_code = $3, hash_version = $4 WHERE id = $5`,
		vote.PrevHash, vote.VoteHash, vote.ReceiptCode, vote.HashVersion, voteID,
	)
	if err != nil {
		return nil, storageErr("failed to finalize vote", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO participations (poll_id, voter_id) VALUES ($1, $2)`,
		req.PollID, req.VoterID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyVoted
		}
		return nil, storageErr("failed to record participation", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE chain_tails SET tail_hash = $1, updated_at = now() WHERE poll_id = $2`,
		vote.VoteHash, req.PollID,
	)
	if err != nil {
		return nil, storageErr("failed to advance chain tail", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("failed to commit vote", err)
	}

	return vote, nil
}

// VotesByPoll returns the poll's full chain in append order. seq only breaks
// timestamp ties; appends are serialized, so both orders agree.
func (r *ledgerRepository) VotesByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error) {
	query := `
		SELECT id, poll_id, voter_id, option_id, cast_at, prev_hash, vote_hash, receipt_code, hash_version
		FROM votes
		WHERE poll_id = $1
		ORDER BY cast_at, seq
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

// ReceiptByCode resolves a receipt code to its redacted vote summary with a
// single joined query; hits and misses cost the same round trip.
func (r *ledgerRepository) ReceiptByCode(ctx context.Context, code string) (*domain.Receipt, error) {
	query := `
		SELECT p.title, o.text, v.cast_at, v.vote_hash
		FROM votes v
		JOIN polls p ON p.id = v.poll_id
		JOIN poll_options o ON o.id = v.option_id
		WHERE v.receipt_code = $1
	`
	var receipt domain.Receipt
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&receipt.PollTitle, &receipt.OptionText, &receipt.CastAt, &receipt.VoteHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to look up receipt: %w", err)
	}
	receipt.CastAt = hashchain.CanonicalTime(receipt.CastAt)
	return &receipt, nil
}

func (r *ledgerRepository) HasParticipated(ctx context.Context, pollID, voterID uuid.UUID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM participations WHERE poll_id = $1 AND voter_id = $2`,
		pollID, voterID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVote(row rowScanner) (*domain.Vote, error) {
	var vote domain.Vote
	var voterID uuid.NullUUID
	var prevHash sql.NullString
	if err := row.Scan(
		&vote.ID, &vote.PollID, &voterID, &vote.OptionID, &vote.CastAt,
		&prevHash, &vote.VoteHash, &vote.ReceiptCode, &vote.HashVersion,
	); err != nil {
		return nil, fmt.Errorf("failed to scan vote: %w", err)
	}
	if voterID.Valid {
		id := voterID.UUID
		vote.VoterID = &id
	}
	if prevHash.Valid {
		prev := prevHash.String
		vote.PrevHash = &prev
	}
	vote.CastAt = hashchain.CanonicalTime(vote.CastAt)
	return &vote, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (code 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isTransient reports lock or serialization failures that a caller may
// retry; everything written in this transaction has been rolled back.
func isTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "55P03": // serialization failure, deadlock, lock not available
		return true
	}
	return false
}

func storageErr(msg string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %v", msg, domain.ErrTransientStorage, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
