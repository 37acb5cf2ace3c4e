// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/poiesic/auditorium/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	roomFlag := &cli.StringFlag{
		Name:     "room",
		Aliases:  []string{"r"},
		Usage:    "Room ID",
		Required: true,
	}

	return &cli.App{
		Name:  "auditorium",
		Usage: "Question answering over recorded classes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   config.DefaultConfigName,
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file",
				Value: ".env",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on (overrides config and PORT)",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Create the PostgreSQL schema",
				Action: migrateCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "dimensions",
						Usage: "Embedding dimensions (overrides config)",
					},
				},
			},
			{
				Name:  "rooms",
				Usage: "Manage rooms",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a room",
						Action: createRoomCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Usage:    "Room name",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Room description",
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List rooms, newest first",
						Action: listRoomsCommand,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Ingest every audio file under a directory into a room",
				Action: ingestCommand,
				Flags: []cli.Flag{
					roomFlag,
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Directory of audio files",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of files read into memory at once",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N files",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum attempts per file for transient failures",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 2 * time.Second,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question in a room",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     []cli.Flag{roomFlag},
			},
			{
				Name:   "questions",
				Usage:  "List the questions of a room, newest first",
				Action: questionsCommand,
				Flags:  []cli.Flag{roomFlag},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return nil
}
