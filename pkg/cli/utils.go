package cli

import (
	"context"

	"github.com/secmon-lab/counsellor/pkg/cli/config"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/repository"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}

// configureRepository returns Firestore if configured, otherwise an in-memory
// repository that loses everything on exit. The returned closer must be called.
func configureRepository(ctx context.Context, cfg *config.Firestore) (interfaces.Repository, func(), error) {
	if !cfg.IsConfigured() {
		logging.From(ctx).Warn("Firestore is not configured, chat histories are kept in memory only")
		return repository.NewMemory(), func() {}, nil
	}

	db, err := cfg.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}

	return db, func() {
		if err := db.Close(); err != nil {
			logging.From(ctx).Error("failed to close firestore client", "error", err)
		}
	}, nil
}
