package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/abrank/internal/repositories"
	"github.com/desertthunder/abrank/internal/shared"
)

// Stats prints the aggregate voting statistics from the key-value store.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	service, err := r.statsService()
	if err != nil {
		return err
	}

	agg, err := service.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	return r.writeJSON(agg, cmd.Bool("pretty"))
}

// VotesList prints the most recent vote records held in the key-value store.
func (r *Runner) VotesList(ctx context.Context, cmd *cli.Command) error {
	service, err := r.statsService()
	if err != nil {
		return err
	}

	if !service.Enabled() {
		return fmt.Errorf("%w: key-value store not configured", shared.ErrStoreDisabled)
	}

	limit := int64(cmd.Int("limit"))
	if limit <= 0 {
		limit = 50
	}

	records, err := service.Votes(ctx, -limit, -1)
	if err != nil {
		return fmt.Errorf("failed to load votes: %w", err)
	}

	return r.writeJSON(records, cmd.Bool("pretty"))
}

// VotesLocal prints vote records that fell back to the local database.
func (r *Runner) VotesLocal(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Data.VotesDBPath)
	if err != nil {
		return fmt.Errorf("failed to open vote database: %w", err)
	}
	defer db.Close()

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	records, err := repositories.NewVoteRepository(db).List()
	if err != nil {
		return fmt.Errorf("failed to list votes: %w", err)
	}

	return r.writeJSON(records, cmd.Bool("pretty"))
}
