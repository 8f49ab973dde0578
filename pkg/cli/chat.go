package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/newsverify/adkbridge/pkg/model"
	"github.com/newsverify/adkbridge/pkg/service/credential"
)

func chatCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID reported to the engine",
			Sources:     cli.EnvVars("ADKBRIDGE_USER_ID"),
			Destination: &userID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive query loop against the reasoning engine",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			store := credential.NewStore()
			refresher := cfg.newRefresher(store)
			if err := refresher.Start(ctx, cfg.refreshInterval()); err != nil {
				return goerr.Wrap(err, "failed to start credential refresher")
			}

			client, err := cfg.newClient(store)
			if err != nil {
				return err
			}
			client.Warmup()

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Chat session started. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				if line == "exit" {
					break
				}
				if line == "" {
					continue
				}

				result, err := client.CallADK(ctx, line, model.Metadata{
					Channel: "cli",
					User:    &model.User{ID: userID},
				})
				if err != nil {
					fmt.Fprintf(w, "error: %s\n", err)
					continue
				}

				fmt.Fprintf(w, "[%s / %.1f]\n%s\n", result.Verdict, result.Confidence, result.RawFinal)
			}

			fmt.Fprintf(w, "\nChat session completed\n")
			return nil
		},
	}
}
