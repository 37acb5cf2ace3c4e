package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/auditorium"
	"github.com/poiesic/auditorium/config"
	"github.com/poiesic/auditorium/importer"
	"github.com/poiesic/auditorium/server"
	"github.com/poiesic/auditorium/storage/postgres"
	"github.com/urfave/cli/v2"
)

// openService is replaced in tests to inject a mock provider.
var openService = func(ctx context.Context, cfg *config.Config) (*auditorium.Service, error) {
	return auditorium.Open(ctx, cfg)
}

// loadConfig reads the config file, the .env file and the environment.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnv(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withService(c *cli.Context, fn func(ctx context.Context, svc *auditorium.Service) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	return fn(ctx, svc)
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if port := c.Int("port"); port > 0 {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	srv, err := server.New(svc,
		server.WithCORSOrigins(cfg.Server.CORSOrigins...),
		server.WithMaxUploadBytes(int64(cfg.Server.MaxUploadMB)<<20),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr())
}

func migrateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Storage.Type != config.StoragePostgres {
		return fmt.Errorf("migrate requires postgres storage, got %q", cfg.Storage.Type)
	}
	dimensions := cfg.Storage.Dimensions
	if d := c.Int("dimensions"); d > 0 {
		dimensions = d
	}

	if err := postgres.Migrate(c.Context, cfg.Storage.DatabaseURL, dimensions); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Schema ready (vector dimensions %d)\n", dimensions)
	return nil
}

func createRoomCommand(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *auditorium.Service) error {
		room, err := svc.CreateRoom(ctx, c.String("name"), c.String("description"))
		if err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		fmt.Fprintln(c.App.Writer, room.ID)
		return nil
	})
}

func listRoomsCommand(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *auditorium.Service) error {
		rooms, err := svc.ListRooms(ctx)
		if err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		for _, room := range rooms {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%d questions\n", room.ID, room.Name, room.QuestionsCount)
		}
		return nil
	})
}

func ingestCommand(c *cli.Context) error {
	importConfig := &importer.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxAttempts:    c.Int("max-attempts"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if importConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if importConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if importConfig.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0")
	}

	return withService(c, func(ctx context.Context, svc *auditorium.Service) error {
		im, err := svc.NewImporter(importConfig, c.App.ErrWriter)
		if err != nil {
			return err
		}
		summary, err := im.Run(ctx, c.String("room"), c.String("dir"))
		if err != nil {
			if summary != nil && summary.Ingested > 0 {
				return fmt.Errorf("import finished with %d failures: %w", summary.Failed, err)
			}
			return fmt.Errorf("import failed: %w", err)
		}
		return nil
	})
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}

	return withService(c, func(ctx context.Context, svc *auditorium.Service) error {
		q, err := svc.Ask(ctx, c.String("room"), question)
		if err != nil {
			return fmt.Errorf("failed to answer question: %w", err)
		}
		if q.Answer == nil {
			fmt.Fprintln(c.App.Writer, "No class content is similar enough to answer this question.")
			return nil
		}
		fmt.Fprintln(c.App.Writer, *q.Answer)
		return nil
	})
}

func questionsCommand(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *auditorium.Service) error {
		questions, err := svc.ListQuestions(ctx, c.String("room"))
		if err != nil {
			return fmt.Errorf("failed to list questions: %w", err)
		}
		for _, q := range questions {
			answer := "(no answer)"
			if q.Answer != nil {
				answer = *q.Answer
			}
			fmt.Fprintf(c.App.Writer, "[%s] %s\n  %s\n", q.CreatedAt.Format("2006-01-02 15:04"), q.Question, answer)
		}
		return nil
	})
}
