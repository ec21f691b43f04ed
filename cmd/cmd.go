// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/tasks"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "per-page",
			Usage: "Items per page",
			Value: 100,
		},
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// setupCommand handles setup operations for configuration and the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml with the default settings",
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
				Usage: "Initialize the session database and run migrations",
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

// authCommand handles login, logout and the password flows.
func authCommand(r *Runner) *cli.Command {
	passwordFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "token",
			Usage:    "Token received by e-mail",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "New password (prompted when omitted)",
		},
		&cli.StringFlag{
			Name:  "confirm",
			Usage: "Password confirmation (prompted when omitted)",
		},
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account e-mail",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
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
				Name:   "whoami",
				Usage:  "Show the signed-in user and token claims",
				Flags:  outputFlags(),
				Action: r.AuthWhoami,
			},
			{
				Name:   "activate",
				Usage:  "Activate an invited account by choosing a password",
				Flags:  passwordFlags,
				Action: r.AuthActivate,
			},
			{
				Name:  "forgot",
				Usage: "Request a password reset e-mail",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account e-mail",
						Required: true,
					},
				},
				Action: r.AuthForgot,
			},
			{
				Name:   "reset",
				Usage:  "Reset the password with a token received by e-mail",
				Flags:  passwordFlags,
				Action: r.AuthReset,
			},
		},
	}
}

// profileCommand handles the signed-in user's own content and details.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Your resources, playlists and account details",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List your resources and playlists",
				Flags:  outputFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Change your name, e-mail or picture",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New display name"},
					&cli.StringFlag{Name: "email", Usage: "New e-mail"},
					&cli.StringFlag{Name: "image", Usage: "Path to a profile picture"},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// resourcesCommand handles resource browsing and submission.
func resourcesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "resources",
		Aliases: []string{"res", "r"},
		Usage:   "Browse and manage resources",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List resources",
				Flags:  flags(pageFlags(), outputFlags()),
				Action: r.ResourcesList,
			},
			{
				Name:      "search",
				Usage:     "Search by title substring, exact tag or type label",
				ArgsUsage: "<query>",
				Flags: flags([]cli.Flag{
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Filter by tag name instead of a free query",
					},
				}, outputFlags()),
				Action: r.ResourcesSearch,
			},
			{
				Name:      "show",
				Usage:     "Show one resource",
				ArgsUsage: "<id>",
				Flags:     outputFlags(),
				Action:    r.ResourcesShow,
			},
			{
				Name:  "create",
				Usage: "Submit a new resource",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Resource title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Resource description",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Submission mode: upload, url or nota",
						Value: "url",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "File to upload (type upload)",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "External address (type url)",
					},
					&cli.StringFlag{
						Name:  "content",
						Usage: "Markdown body (type nota), or @path to read it from a file",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag id, repeatable",
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Only you can see the resource",
					},
					&cli.BoolFlag{
						Name:  "featured",
						Usage: "Highlight on the home page",
					},
				},
				Action: r.ResourcesCreate,
			},
			{
				Name:      "like",
				Usage:     "Like a resource",
				ArgsUsage: "<id>",
				Action:    r.ResourcesLike,
			},
			{
				Name:      "delete",
				Usage:     "Delete a resource",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.ResourcesDelete,
			},
			{
				Name:      "open",
				Usage:     "Open the resource link in the browser",
				ArgsUsage: "<id>",
				Action:    r.ResourcesOpen,
			},
			{
				Name:  "export",
				Usage: "Write the resource listing as JSON",
				Flags: flags(pageFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "recursos.json",
					},
				}),
				Action: r.ResourcesExport,
			},
		},
	}
}

// playlistsCommand handles playlist management and export.
func playlistsCommand(r *Runner) *cli.Command {
	formFlags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Playlist title",
				Required: required,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description",
			},
		}
	}

	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Browse and manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists",
				Flags: flags([]cli.Flag{
					&cli.BoolFlag{
						Name:  "mine",
						Usage: "Only your playlists",
					},
				}, pageFlags(), outputFlags()),
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist with its ordered items",
				ArgsUsage: "<id>",
				Flags:     outputFlags(),
				Action:    r.PlaylistsShow,
			},
			{
				Name:   "create",
				Usage:  "Create a playlist",
				Flags:  formFlags(true),
				Action: r.PlaylistsCreate,
			},
			{
				Name:      "update",
				Usage:     "Change the title or description of a playlist",
				ArgsUsage: "<id>",
				Flags:     formFlags(false),
				Action:    r.PlaylistsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "add",
				Usage:     "Append a resource to a playlist",
				ArgsUsage: "<playlist-id> <resource-id>",
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a resource from a playlist",
				ArgsUsage: "<playlist-id> <resource-id>",
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.PlaylistsRemove,
			},
			{
				Name:      "reorder",
				Usage:     "Save a new item order, given as every resource id in the wanted order",
				ArgsUsage: "<playlist-id> <resource-id>...",
				Action:    r.PlaylistsReorder,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files with a manifest",
				ArgsUsage: "[playlist-id]...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "mine",
						Usage: "Export all of your playlists when no id is given",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + strings.Join(tasks.ExportFormats, ", "),
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: acervo_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers (default from config, max 10)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second (default from config)",
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// tagsCommand handles the tag taxonomy.
func tagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List and manage tags",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List tags",
				Flags:  outputFlags(),
				Action: r.TagsList,
			},
			{
				Name:      "create",
				Usage:     "Create a tag (staff only)",
				ArgsUsage: "<name>",
				Action:    r.TagsCreate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a tag (staff only)",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.TagsDelete,
			},
		},
	}
}

// usersCommand handles the admin user directory.
func usersCommand(r *Runner) *cli.Command {
	formFlags := func(password bool) []cli.Flag {
		f := []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Full name"},
			&cli.StringFlag{Name: "email", Usage: "E-mail"},
			&cli.StringFlag{Name: "role", Usage: "Gestor, Coordenador, Professor or Aluno"},
			&cli.StringFlag{Name: "birth-date", Usage: "Birth date, YYYY-MM-DD"},
		}
		if password {
			f = append(f, &cli.StringFlag{Name: "password", Usage: "Initial password; omit to send an activation e-mail"})
		}
		return f
	}

	return &cli.Command{
		Name:    "users",
		Aliases: []string{"u"},
		Usage:   "Manage user accounts (staff only)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users",
				Flags: flags([]cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Name or e-mail substring",
					},
				}, outputFlags()),
				Action: r.UsersList,
			},
			{
				Name:      "show",
				Usage:     "Show one user",
				ArgsUsage: "<id>",
				Flags:     outputFlags(),
				Action:    r.UsersShow,
			},
			{
				Name:   "create",
				Usage:  "Create a user",
				Flags:  formFlags(true),
				Action: r.UsersCreate,
			},
			{
				Name:      "update",
				Usage:     "Update a user",
				ArgsUsage: "<id>",
				Flags:     formFlags(false),
				Action:    r.UsersUpdate,
			},
			{
				Name:      "toggle",
				Usage:     "Deactivate an active user or reactivate an inactive one",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.UsersToggle,
			},
			{
				Name:      "image",
				Usage:     "Upload a profile picture for a user",
				ArgsUsage: "<id> <file>",
				Action:    r.UsersImage,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
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
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Action:  r.TUI,
	}
}

// sandboxCommand runs the local stand-in backend.
func sandboxCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sandbox",
		Usage: "Serve an in-memory backend with seed data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
			&cli.IntFlag{
				Name:  "resources",
				Usage: "Number of generated resources",
				Value: 24,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed of the generated data (default from config)",
			},
		},
		Action: r.Sandbox,
	}
}
