package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/secmon-lab/counsellor/pkg/cli/config"
	server "github.com/secmon-lab/counsellor/pkg/controller/http"
	"github.com/secmon-lab/counsellor/pkg/usecase"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		addr          string
		enableMetrics bool
		sentryCfg     config.Sentry
		firestoreCfg  config.Firestore
		geminiCfg     config.GeminiCfg
		llmCfg        config.LLMCfg
		authCfg       config.Auth
		relayCfg      config.Relay
		promptCfg     config.Prompt
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("COUNSELLOR_ADDR"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.BoolFlag{
				Name:        "enable-metrics",
				Usage:       "Expose Prometheus metrics on /metrics",
				Category:    "Metrics",
				Sources:     cli.EnvVars("COUNSELLOR_ENABLE_METRICS"),
				Destination: &enableMetrics,
			},
		},
		sentryCfg.Flags(),
		firestoreCfg.Flags(),
		geminiCfg.Flags(),
		llmCfg.Flags(),
		authCfg.Flags(),
		relayCfg.Flags(),
		promptCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"enableMetrics", enableMetrics,
				"sentry", sentryCfg,
				"firestore", firestoreCfg,
				"gemini", geminiCfg,
				"llm", llmCfg,
				"auth", authCfg,
				"relay", relayCfg,
				"prompt", promptCfg,
			)

			verifier, err := authCfg.Configure()
			if err != nil {
				return err
			}

			flushSentry, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flushSentry()

			promptSvc, err := promptCfg.Configure()
			if err != nil {
				return err
			}

			streamer, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}

			llmClient, err := llmCfg.Configure(ctx, &geminiCfg)
			if err != nil {
				return err
			}

			repo, closeRepo, err := configureRepository(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			ucOptions := []usecase.Option{
				usecase.WithRepository(repo),
				usecase.WithTextStreamer(streamer),
				usecase.WithPromptService(promptSvc),
				usecase.WithRelayOptions(relayCfg.Options()...),
			}
			if llmClient != nil {
				ucOptions = append(ucOptions, usecase.WithLLMClient(llmClient))
			}
			uc := usecase.New(ucOptions...)

			logging.From(ctx).Info("use cases configured",
				"chat", uc.IsChatEnabled(),
				"recommendation", uc.IsRecommendationEnabled(),
				"recommendation_provider", llmCfg.GetActiveProvider(&geminiCfg),
			)

			// No WriteTimeout: chat answers are streamed for as long as the model writes.
			httpServer := http.Server{
				Addr: addr,
				Handler: server.New(uc,
					server.WithVerifier(verifier),
					server.WithMetrics(enableMetrics),
				),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				logging.From(ctx).Info("shutting down server")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}
}
