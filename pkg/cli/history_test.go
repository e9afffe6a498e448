package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/cli"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/repository"
	"github.com/secmon-lab/counsellor/pkg/usecase"
	"github.com/secmon-lab/counsellor/pkg/utils/clock"
)

func TestPrintHistories(t *testing.T) {
	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()

	created := clock.With(context.Background(), clock.Fixed(base))
	gt.NoError(t, repo.PutChatHistory(created, chat.NewCompletedHistory(created, "user-1",
		"Which universities in Canada?", "Consider Toronto,\nUBC and McGill. "+strings.Repeat("More detail. ", 20))))

	uc := usecase.New(usecase.WithRepository(repo))
	ctx := clock.With(context.Background(), clock.Fixed(base.Add(3*time.Hour)))

	t.Run("preview", func(t *testing.T) {
		var out bytes.Buffer
		gt.NoError(t, cli.PrintHistories(ctx, uc, "user-1", false, &out))
		gt.S(t, out.String()).
			Contains("[completed]").
			Contains("3 hours ago").
			Contains("Q: Which universities in Canada?").
			Contains("A: Consider Toronto, UBC and McGill.").
			Contains("...").
			Contains("1 exchanges")
	})

	t.Run("full", func(t *testing.T) {
		var out bytes.Buffer
		gt.NoError(t, cli.PrintHistories(ctx, uc, "user-1", true, &out))
		gt.S(t, out.String()).Contains("Consider Toronto,\nUBC").NotContains("...")
	})

	t.Run("no history", func(t *testing.T) {
		var out bytes.Buffer
		gt.NoError(t, cli.PrintHistories(ctx, uc, "user-2", false, &out))
		gt.S(t, out.String()).Contains("No chat history for user-2")
	})
}
