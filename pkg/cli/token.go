package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/cli/config"
	"github.com/secmon-lab/counsellor/pkg/domain/model/auth"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// cmdToken issues a session token for local testing of the API
func cmdToken() *cli.Command {
	var (
		authCfg   config.Auth
		userID    string
		email     string
		expiresIn time.Duration
	)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a session token for local testing",
		Flags: joinFlags(
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "user-id",
					Aliases:     []string{"u"},
					Usage:       "User ID in the token",
					Required:    true,
					Destination: &userID,
				},
				&cli.StringFlag{
					Name:        "email",
					Usage:       "Email in the token",
					Destination: &email,
				},
				&cli.DurationFlag{
					Name:        "expires-in",
					Usage:       "Token lifetime",
					Value:       auth.TokenExpireDuration,
					Destination: &expiresIn,
				},
			},
			authCfg.Flags(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			verifier, err := authCfg.Configure()
			if err != nil {
				return err
			}

			token, err := verifier.Issue(ctx, types.UserID(userID), email, expiresIn)
			if err != nil {
				return goerr.Wrap(err, "failed to issue token", goerr.V("user_id", userID))
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, token)
			return err
		},
	}
}
