// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// channelCommand handles stored channels
func channelCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "channel",
		Usage: "Manage followed channels",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Fetch a channel by handle or id and store it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "handle"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "playlists",
						Aliases: []string{"p"},
						Usage:   "Also sync the channel's playlists",
					},
					&cli.BoolFlag{
						Name:    "videos",
						Aliases: []string{"v"},
						Usage:   "Also sync the channel's uploads",
					},
				},
				Action: r.ChannelAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored channels",
				Action:  r.ChannelList,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a channel (its playlists and videos are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "handle"},
				},
				Action: r.ChannelRemove,
			},
		},
	}
}

// playlistCommand handles stored playlists
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Manage followed playlists",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Fetch a playlist by URL and store it with its videos",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "videos",
						Aliases: []string{"v"},
						Usage:   "Print video titles instead of counts",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a playlist by id or title (its videos are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "progress",
				Usage: "Show watch progression per playlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sort",
						Usage: "Sort by completion, most complete first",
					},
				},
				Action: r.PlaylistProgress,
			},
			{
				Name:  "export",
				Usage: "Export a stored playlist, or all of them with --all",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, md, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (single playlist, stdout when empty) or directory (--all)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every stored playlist except uploads",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers (--all)",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover images for markdown exports (--all)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// watchCommand picks a video to watch
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Find and watch a video",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "unseen-only",
				Aliases: []string{"u"},
				Usage:   "Choose only from unseen videos",
			},
			&cli.BoolFlag{
				Name:    "no-browser",
				Aliases: []string{"b"},
				Usage:   "Do not open the video in a browser",
			},
			&cli.BoolFlag{
				Name:    "no-random",
				Aliases: []string{"r"},
				Usage:   "Pick the oldest unseen (or newest) video instead of a random one",
			},
			&cli.StringFlag{
				Name:    "channel",
				Aliases: []string{"c"},
				Usage:   "Filter videos by channel name",
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Filter videos by playlist id (wins over --channel)",
			},
			&cli.BoolFlag{
				Name:    "mark-as-watched",
				Aliases: []string{"w"},
				Usage:   "Mark the selected video as watched",
			},
			&cli.BoolFlag{
				Name:    "summary",
				Aliases: []string{"s"},
				Usage:   "Request a summary of the video (unavailable)",
			},
		},
		Action: r.Watch,
	}
}

// syncCommand refreshes a channel
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync a channel's uploads and playlists",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "handle"},
		},
		Action: r.Sync,
	}
}

// videoCommand handles individual videos
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "video",
		Usage: "Inspect videos and their watch state",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored videos, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "channel",
						Aliases: []string{"c"},
						Usage:   "Filter videos by channel name",
					},
					&cli.StringFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Filter videos by playlist id",
					},
					&cli.BoolFlag{
						Name:    "unseen-only",
						Aliases: []string{"u"},
						Usage:   "Only list unseen videos",
					},
				},
				Action: r.VideoList,
			},
			{
				Name:  "seen",
				Usage: "Mark a video as watched",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "video"},
				},
				Action: r.VideoSeen,
			},
			{
				Name:  "unseen",
				Usage: "Mark a video as not watched",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "video"},
				},
				Action: r.VideoUnseen,
			},
			{
				Name:   "watched",
				Usage:  "List watched videos, most recent first",
				Action: r.VideoWatched,
			},
			{
				Name:  "transcript",
				Usage: "Fetch (and cache) a video transcript",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "video"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "lang",
						Usage: "Preferred languages in order (defaults to youtube.transcript_languages)",
					},
				},
				Action: r.VideoTranscript,
			},
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
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
				Usage: "Create the SQLite database and run migrations",
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

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse playlists and videos interactively",
		Action: r.TUI,
	}
}
