package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/robalyx/steamfriends/internal/setup"
	"github.com/urfave/cli/v3"
)

// LogDir specifies where log files are stored.
const LogDir = "logs/steamfriends_logs"

var (
	ErrMissingSteamID = errors.New("a steam id argument is required")
	ErrRecordNotFound = errors.New("no persisted friend record")
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "steamfriends",
		Usage: "Cache Steam friend lists and answer friendship queries",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the friend cache, warm-up worker and REST API",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset-presence",
						Usage: "Clear the shared online roster before warming up",
					},
				},
				Action: serveAction,
			},
			{
				Name:      "inspect",
				Usage:     "Print the persisted friend record of a user",
				ArgsUsage: "<steamid>",
				Action:    inspectAction,
			},
			{
				Name:      "connect",
				Usage:     "Report a user as connected to a running server",
				ArgsUsage: "<steamid>",
				Flags:     []cli.Flag{serverFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return sessionAction(ctx, c, true)
				},
			},
			{
				Name:      "disconnect",
				Usage:     "Report a user as disconnected to a running server",
				ArgsUsage: "<steamid>",
				Flags:     []cli.Flag{serverFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return sessionAction(ctx, c, false)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, os.Args)
}

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Value:   "http://127.0.0.1:8080",
		Usage:   "Base URL of the running REST API",
	}
}

// inspectAction reads a record straight from the store without fetching.
func inspectAction(ctx context.Context, c *cli.Command) error {
	steamID := c.Args().First()
	if steamID == "" {
		return ErrMissingSteamID
	}

	app, err := setup.InitializeApp(ctx, LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	record, ok := app.Store.Read(ctx, steamID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, steamID)
	}

	out, err := sonic.ConfigStd.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	fmt.Println(string(out))
	fmt.Printf("last updated: %s, friends: %d\n", record.UpdatedAt().UTC().Format("2006-01-02 15:04:05 MST"), len(record.Friends))

	return nil
}
