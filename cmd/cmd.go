// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/mosaic/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, csv, markdown or json",
		Value:   formatter.FormatTable,
	}
}

// setupCommand handles configuration and database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// catalogCommand handles the local media catalog.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Manage the local media catalog",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Catalogue every image in a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "dir",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Descend into subdirectories",
						Value:   true,
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent image probes (max 16)",
						Value:   4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Files probed per second, 0 for unlimited",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print every file as it is saved",
					},
				},
				Action: r.CatalogImport,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List catalogued media in insertion order",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of items to list",
						Value: 50,
					},
					&cli.Int64Flag{
						Name:  "after",
						Usage: "List items after this id",
					},
					formatFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "open",
				Usage: "Open a catalogued item with the system viewer",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.CatalogOpen,
			},
		},
	}
}

// layoutCommand exports a computed grid.
func layoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "layout",
		Usage: "Compute the masonry layout for a container width and export the placements",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "width",
				Usage: "Container width in layout units",
				Value: 1040,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items to lay out, 0 for all",
				Value: 200,
			},
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
		},
		Action: r.LayoutExport,
	}
}

// browseCommand returns the top-level TUI command.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "Scroll anchor key (defaults to the source name)",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file while the gallery owns the terminal",
				Value: "./tmp/mosaic-tui.log",
			},
		},
		Action: r.Browse,
	}
}

// anchorsCommand manages saved scroll positions.
func anchorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "anchors",
		Usage: "Inspect and clear saved scroll positions",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved scroll anchors",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.AnchorsList,
			},
			{
				Name:  "clear",
				Usage: "Delete saved scroll anchors",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "Delete only this anchor",
					},
				},
				Action: r.AnchorsClear,
			},
		},
	}
}

// serveCommand serves the catalog to remote browsers.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local catalog as JSON pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Bearer token required on item requests (defaults to source.token)",
			},
		},
		Action: r.Serve,
	}
}
