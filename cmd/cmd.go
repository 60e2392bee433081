// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles initialization of local configuration and storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file and local vote database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the vote tracking HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the vote tracking server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// statsCommand prints aggregate voting statistics.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregate voting statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Stats,
	}
}

// votesCommand inspects stored vote records.
func votesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "votes",
		Usage: "Inspect stored vote records",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List votes from the key-value store",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of votes to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.VotesList,
			},
			{
				Name:  "local",
				Usage: "List votes held in the local fallback database",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.VotesLocal,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for running a comparison session.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"tui", "interactive"},
		Usage:   "Launch the interactive listening comparison",
		Action:  r.TUI,
	}
}
