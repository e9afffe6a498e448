package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/fireconf"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
)

// DefineFirestoreIndexes exposes defineFirestoreIndexes for testing
func DefineFirestoreIndexes() *fireconf.Config {
	return defineFirestoreIndexes()
}

func RunInteractiveMode(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, r io.Reader, w io.Writer) error {
	return runInteractiveMode(ctx, uc, userID, r, w)
}

func RunSingleQuery(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, query string, w io.Writer) error {
	return runSingleQuery(ctx, uc, userID, query, w)
}

var LoadProfile = loadProfile

func PrintHistories(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, full bool, w io.Writer) error {
	return printHistories(ctx, uc, userID, full, w)
}
