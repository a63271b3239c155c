package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

type resultsRepository struct {
	db *sql.DB
}

func NewResultsRepository(db *sql.DB) ports.ResultsRepository {
	return &resultsRepository{
		db: db,
	}
}

func (r *resultsRepository) TallyByPoll(ctx context.Context, pollID uuid.UUID) ([]domain.OptionTally, error) {
	query := `
		SELECT o.id, o.text, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text, o.display_order
		ORDER BY o.display_order
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	var tallies []domain.OptionTally
	for rows.Next() {
		var t domain.OptionTally
		if err := rows.Scan(&t.OptionID, &t.Text, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tallies: %w", err)
	}
	return tallies, nil
}
