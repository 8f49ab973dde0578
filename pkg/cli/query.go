package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/newsverify/adkbridge/pkg/model"
	"github.com/newsverify/adkbridge/pkg/service/credential"
)

func queryCommand() *cli.Command {
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
		Name:      "query",
		Usage:     "Run a single verification query against the reasoning engine",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("query text is required")
			}
			query := strings.Join(c.Args().Slice(), " ")

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			store := credential.NewStore()
			if err := cfg.newRefresher(store).Refresh(ctx); err != nil {
				return goerr.Wrap(err, "failed to obtain initial credential")
			}

			client, err := cfg.newClient(store)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " waiting for the reasoning engine..."
			sp.Start()

			result, err := client.CallADK(ctx, query, model.Metadata{
				Channel: "cli",
				User:    &model.User{ID: userID},
			})
			sp.Stop()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Verdict:    %s\n", result.Verdict)
			fmt.Fprintf(w, "Confidence: %.1f\n", result.Confidence)
			fmt.Fprintf(w, "\n%s\n", result.RawFinal)
			return nil
		},
	}
}
