// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// searchCommand uploads a folder to the search service and prints the results
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search every file in a folder for keywords",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Folder to search",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "keywords",
				Aliases: []string{"k"},
				Usage:   "Comma-separated keywords",
			},
			&cli.BoolFlag{
				Name:    "exact",
				Aliases: []string{"e"},
				Usage:   "Match whole words only",
			},
			&cli.StringFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of workers, bounded by the cores of this machine",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (txt, csv, md, json, yaml)",
				Value:   "txt",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON (same as --format json)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write results to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record the search in the history database",
			},
		},
		Action: r.Search,
	}
}

// tuiCommand returns the top-level TUI command for interactive searches.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for keyword searches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Folder to preselect",
			},
			&cli.StringFlag{
				Name:    "keywords",
				Aliases: []string{"k"},
				Usage:   "Initial keywords",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record searches in the history database",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File receiving log output while the TUI runs",
				Value: "./tmp/kwscan-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// coresCommand prints the worker bound of this machine
func coresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "cores",
		Usage:  "Show the maximum number of workers available on this machine",
		Action: r.Cores,
	}
}

// historyCommand reads recorded searches
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse recorded searches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent searches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of searches to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a recorded search and its results",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (txt, csv, md, json, yaml)",
						Value:   "txt",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded search",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
