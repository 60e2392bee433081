package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/abrank/internal/catalog"
	"github.com/desertthunder/abrank/internal/playback"
	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/repositories"
	"github.com/desertthunder/abrank/internal/session"
	"github.com/desertthunder/abrank/internal/shared"
	"github.com/desertthunder/abrank/internal/ui"
	"github.com/desertthunder/abrank/internal/vote"
)

// TUI launches the interactive terminal UI for a comparison session.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/abrank-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed catalog: %w", err)
	}

	provider := playlists.NewProvider(playlists.ProviderOpts{
		Path:   r.config.Data.PlaylistsPath,
		Logger: r.logger,
	})

	var fallback vote.FallbackStore
	if db, err := shared.NewDatabase(r.config.Data.VotesDBPath); err != nil {
		r.logger.Warn("local vote database unavailable", "error", err)
	} else {
		defer db.Close()
		if err := repositories.Migrate(db); err != nil {
			r.logger.Warn("vote database migration failed", "error", err)
		} else {
			fallback = repositories.NewVoteRepository(db)
		}
	}

	recorder := vote.NewRecorder(vote.RecorderOpts{
		Endpoint:   r.config.Tracker.Endpoint,
		HTTPClient: r.httpClient,
		Fallback:   fallback,
		Logger:     r.logger,
	})

	bridge := playback.NewBridge(playback.BridgeOpts{
		BaseURL:    r.config.Player.BridgeURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})

	var model *ui.Model
	controller := playback.NewController(playback.ControllerOpts{
		Source: bridge,
		Logger: r.logger,
		OnUpdate: func(s playback.State) {
			if model != nil {
				model.OnPlayback(s)
			}
		},
	})

	machine := session.NewMachine(session.MachineOpts{
		Catalog:  cat,
		Provider: provider,
		Playback: controller,
		Recorder: recorder,
		Logger:   r.logger,
	})

	model = ui.NewModel(ctx, machine, controller, cat)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	controller.Stop()
	return nil
}
