package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/newsverify/adkbridge/pkg/service/credential"
)

func tokenCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "token",
		Usage: "Refresh the bearer credential once and print its expiry",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			// Token-only command has no engine call, so skip the
			// endpoint requirement.
			if cfg.endpoint == "" {
				cfg.endpoint = "-"
			}

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			store := credential.NewStore()
			if err := cfg.newRefresher(store).Refresh(ctx); err != nil {
				return goerr.Wrap(err, "failed to refresh credential")
			}

			cred, ok := store.Current()
			if !ok {
				return goerr.New("no credential in store after refresh")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Token refreshed. Expires: %s (in %s)\n",
				cred.Expiry.Format(time.RFC3339),
				time.Until(cred.Expiry).Round(time.Second))
			return nil
		},
	}
}
