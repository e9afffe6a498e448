package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/cli/config"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/repository"
	"github.com/secmon-lab/counsellor/pkg/usecase"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// writerTransport streams an answer to a terminal
type writerTransport struct {
	w    io.Writer
	done <-chan struct{}
}

var _ interfaces.StreamTransport = &writerTransport{}

func (x *writerTransport) Begin() error {
	return nil
}

func (x *writerTransport) Write(fragment string) error {
	if _, err := io.WriteString(x.w, fragment); err != nil {
		return goerr.Wrap(err, "failed to write fragment")
	}
	return nil
}

func (x *writerTransport) End() error {
	_, err := fmt.Fprintln(x.w)
	return err
}

func (x *writerTransport) Done() <-chan struct{} {
	return x.done
}

func cmdAsk() *cli.Command {
	var (
		userID      string
		query       string
		profilePath string

		firestoreCfg config.Firestore
		geminiCfg    config.GeminiCfg
		relayCfg     config.Relay
		promptCfg    config.Prompt
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "user-id",
				Aliases:     []string{"u"},
				Usage:       "User ID who owns the chat history",
				Value:       "cli-user",
				Destination: &userID,
			},
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "Question to ask (if not provided, interactive mode will start)",
				Destination: &query,
			},
			&cli.StringFlag{
				Name:        "profile",
				Aliases:     []string{"p"},
				Usage:       "YAML or JSON file of the onboarding profile (only without Firestore)",
				Destination: &profilePath,
			},
		},
		firestoreCfg.Flags(),
		geminiCfg.Flags(),
		relayCfg.Flags(),
		promptCfg.Flags(),
	)

	return &cli.Command{
		Name:    "ask",
		Aliases: []string{"chat"},
		Usage:   "Ask the counsellor and stream the answer to stdout",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, closeRepo, err := configureRepository(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			if profilePath != "" {
				mem, ok := repo.(*repository.Memory)
				if !ok {
					return goerr.New("--profile can not be used with Firestore")
				}
				if err := loadProfile(ctx, mem, types.UserID(userID), profilePath); err != nil {
					return err
				}
			}

			streamer, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			promptSvc, err := promptCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(
				usecase.WithRepository(repo),
				usecase.WithTextStreamer(streamer),
				usecase.WithPromptService(promptSvc),
				usecase.WithRelayOptions(relayCfg.Options()...),
			)

			if query != "" {
				return runSingleQuery(ctx, uc, types.UserID(userID), query, c.Root().Writer)
			}
			return runInteractiveMode(ctx, uc, types.UserID(userID), c.Root().Reader, c.Root().Writer)
		},
	}
}

func loadProfile(ctx context.Context, repo interfaces.UserRepository, userID types.UserID, path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return goerr.Wrap(err, "failed to read profile", goerr.V("path", path))
	}

	// JSON documents are valid YAML
	var onboarding profile.Onboarding
	if err := yaml.Unmarshal(data, &onboarding); err != nil {
		return goerr.Wrap(err, "failed to parse profile", goerr.V("path", path))
	}

	return repo.PutUser(ctx, &profile.User{
		ID:                 userID,
		OnboardingComplete: true,
		Onboarding:         &onboarding,
	})
}

// askOnce streams one answer to w. Ctrl-C stops only the current answer.
func askOnce(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, message string, w io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	h, err := uc.Chat(ctx, userID, message, &writerTransport{w: w, done: ctx.Done()})
	if err != nil {
		return goerr.Wrap(err, "failed to process query")
	}

	logging.From(ctx).Debug("answer finished", "chat_id", h.ID, "status", h.Status)
	return nil
}

func runSingleQuery(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, query string, w io.Writer) error {
	logging.From(ctx).Info("Running single query", "query", query)
	return askOnce(ctx, uc, userID, query, w)
}

func runInteractiveMode(ctx context.Context, uc interfaces.ChatUsecases, userID types.UserID, r io.Reader, w io.Writer) error {
	logger := logging.From(ctx)
	logger.Info("Starting interactive chat mode")

	fmt.Fprintln(w, "💬 Interactive mode started. Type 'exit' or 'quit' to end the session.")
	fmt.Fprintln(w)

	reader := bufio.NewReader(r)

	for {
		fmt.Fprint(w, "> ")

		input, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return goerr.Wrap(err, "failed to read input")
		}

		message := strings.TrimSpace(input)
		if message == "exit" || message == "quit" {
			fmt.Fprintln(w, "👋 Session ended.")
			return nil
		}

		if message != "" {
			if err := askOnce(ctx, uc, userID, message, w); err != nil {
				fmt.Fprintf(w, "❌ Error: %s\n", err.Error())
				logger.Error("Chat error", "error", err)
			}
			fmt.Fprintln(w)
		}

		if err == io.EOF {
			fmt.Fprintln(w, "\n👋 Session ended.")
			return nil
		}
	}
}
