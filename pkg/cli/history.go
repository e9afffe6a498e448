package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/cli/config"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/usecase"
	"github.com/secmon-lab/counsellor/pkg/utils/clock"
	"github.com/urfave/cli/v3"
)

const historyPreviewLength = 120

func cmdHistory() *cli.Command {
	var (
		userID       string
		full         bool
		firestoreCfg config.Firestore
	)

	return &cli.Command{
		Name:  "history",
		Usage: "Show the chat history of a user",
		Flags: joinFlags(
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "user-id",
					Aliases:     []string{"u"},
					Usage:       "User ID who owns the chat history",
					Required:    true,
					Destination: &userID,
				},
				&cli.BoolFlag{
					Name:        "full",
					Usage:       "Print whole responses instead of a preview",
					Destination: &full,
				},
			},
			firestoreCfg.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, closeRepo, err := configureRepository(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			uc := usecase.New(usecase.WithRepository(repo))
			return printHistories(ctx, uc, types.UserID(userID), full, c.Root().Writer)
		},
	}
}

func printHistories(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, full bool, w io.Writer) error {
	histories, err := uc.GetChatHistories(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "failed to get chat histories")
	}

	if len(histories) == 0 {
		fmt.Fprintf(w, "No chat history for %s\n", userID)
		return nil
	}

	now := clock.Now(ctx)
	for _, h := range histories {
		response := h.Response
		if !full {
			response = preview(response, historyPreviewLength)
		}

		fmt.Fprintf(w, "[%s] %s (%s)\n", h.Status, h.ID, humanize.RelTime(h.CreatedAt, now, "ago", "from now"))
		fmt.Fprintf(w, "  Q: %s\n", h.Message)
		fmt.Fprintf(w, "  A: %s\n", response)
	}
	fmt.Fprintf(w, "%s exchanges\n", humanize.Comma(int64(len(histories))))

	return nil
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
