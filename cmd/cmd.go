// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Print the request fields without sending them",
	}
}

// videoFieldFlags are the editable video fields shared by create and update.
func videoFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Video title"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Video description"},
		&cli.StringFlag{Name: "amazon-link", Usage: "Amazon product link"},
		&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable)"},
		&cli.IntFlag{Name: "category-id", Usage: "Category ID"},
		&cli.StringFlag{Name: "meta-title", Usage: "SEO title"},
		&cli.StringFlag{Name: "meta-description", Usage: "SEO description"},
		&cli.StringSliceFlag{Name: "meta-keyword", Usage: "SEO keyword (repeatable, defaults to the tags)"},
		&cli.StringFlag{Name: "video", Usage: "Path to the video file"},
		&cli.StringFlag{Name: "thumbnail", Usage: "Path to the thumbnail image"},
		dryRunFlag(),
	}
}

func idArgument() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name: "id",
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, then initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles the admin session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in to the admin client",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Check credentials and store a session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Admin username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Admin password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// videosCommand handles catalog video operations.
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "videos",
		Aliases: []string{"v"},
		Usage:   "List and edit catalog videos",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show one page of videos",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Videos per page (defaults to ui.page_size)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Filter the page by title, tag or link",
					},
					&cli.IntFlag{
						Name:  "category",
						Usage: "Filter the page by category ID",
					},
					&cli.StringFlag{
						Name:  "view",
						Usage: "Render as cards or table (defaults to the saved preference)",
					},
					jsonFlag(),
				},
				Action: r.VideosList,
			},
			{
				Name:      "show",
				Usage:     "Show a single video",
				Arguments: idArgument(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.VideosShow,
			},
			{
				Name:   "create",
				Usage:  "Upload a new video",
				Flags:  videoFieldFlags(),
				Action: r.VideosCreate,
			},
			{
				Name:      "update",
				Usage:     "Send the changed fields of a video",
				Arguments: idArgument(),
				Flags:     videoFieldFlags(),
				Action:    r.VideosUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a video",
				Arguments: idArgument(),
				Action:    r.VideosDelete,
			},
			{
				Name:  "export",
				Usage: "Export videos to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output file path",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every page instead of the first",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent page requests when exporting every page",
					},
				},
				Action: r.VideosExport,
			},
			{
				Name:      "open",
				Usage:     "Open a video's Amazon link in the browser",
				Arguments: idArgument(),
				Action:    r.VideosOpen,
			},
		},
	}
}

// categoriesCommand handles catalog category operations.
func categoriesCommand(r *Runner) *cli.Command {
	categoryFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Category name"},
			&cli.StringFlag{Name: "image", Usage: "Path to the category image"},
			dryRunFlag(),
		}
	}

	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"cat"},
		Usage:   "List and edit catalog categories",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show all categories",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.CategoriesList,
			},
			{
				Name:   "create",
				Usage:  "Create a category",
				Flags:  categoryFlags(),
				Action: r.CategoriesCreate,
			},
			{
				Name:      "update",
				Usage:     "Send the changed fields of a category",
				Arguments: idArgument(),
				Flags:     categoryFlags(),
				Action:    r.CategoriesUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a category",
				Arguments: idArgument(),
				Action:    r.CategoriesDelete,
			},
		},
	}
}

// viewCommand handles the persisted list view preference.
func viewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "view",
		Usage: "Get or set the video list view mode",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Print the saved view mode",
				Action: r.ViewGet,
			},
			{
				Name:  "set",
				Usage: "Save the view mode (cards or table)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "mode",
					},
				},
				Action: r.ViewSet,
			},
		},
	}
}

// apiCommand handles direct API calls.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the catalog API, prints the response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// historyCommand lists recorded writes.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show writes sent to the API from this machine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "entity",
				Usage: "Only show video or category writes",
			},
			&cli.IntFlag{
				Name:  "id",
				Usage: "Only show writes to this entity ID",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries",
				Value: 20,
			},
			jsonFlag(),
		},
		Action: r.History,
	}
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive admin UI",
		Action: r.TUI,
	}
}
