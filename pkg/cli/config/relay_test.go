package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func runFlags(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...))).Required()
}

func TestRelay(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.Relay
		runFlags(t, cfg.Flags())
		gt.A(t, cfg.Options()).Length(3)
	})

	t.Run("custom values", func(t *testing.T) {
		var cfg config.Relay
		runFlags(t, cfg.Flags(),
			"--relay-snapshot-timeout", "500ms",
			"--relay-final-attempts", "5",
			"--relay-retry-interval", "0s",
		)
		// zero interval keeps the default
		gt.A(t, cfg.Options()).Length(2)
	})
}

func TestAuth(t *testing.T) {
	t.Run("secret is required", func(t *testing.T) {
		var cfg config.Auth
		runFlags(t, cfg.Flags())
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("verifier", func(t *testing.T) {
		var cfg config.Auth
		runFlags(t, cfg.Flags(), "--jwt-secret", "s3cret")
		v, err := cfg.Configure()
		gt.NoError(t, err)
		gt.NotNil(t, v)
	})
}

func TestGemini(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		var cfg config.GeminiCfg
		runFlags(t, cfg.Flags())
		gt.False(t, cfg.IsConfigured())
		_, err := cfg.Configure(context.Background())
		gt.Error(t, err)
	})

	t.Run("api key", func(t *testing.T) {
		var cfg config.GeminiCfg
		runFlags(t, cfg.Flags(), "--gemini-api-key", "dummy-key", "--gemini-model", "gemini-test")
		gt.True(t, cfg.IsConfigured())

		s, err := cfg.Configure(context.Background())
		gt.NoError(t, err).Required()
		gt.Equal(t, s.Model(), "gemini-test")
	})
}

func TestLLM(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		var llmCfg config.LLMCfg
		var gemCfg config.GeminiCfg
		runFlags(t, append(llmCfg.Flags(), gemCfg.Flags()...), "--gemini-api-key", "dummy-key")

		client, err := llmCfg.Configure(context.Background(), &gemCfg)
		gt.NoError(t, err)
		gt.Nil(t, client)
		gt.Equal(t, llmCfg.GetActiveProvider(&gemCfg), "none")
	})
}

func TestPrompt(t *testing.T) {
	t.Run("built-in templates", func(t *testing.T) {
		var cfg config.Prompt
		runFlags(t, cfg.Flags())
		svc, err := cfg.Configure()
		gt.NoError(t, err)
		gt.NotNil(t, svc)
	})

	t.Run("missing directory", func(t *testing.T) {
		var cfg config.Prompt
		runFlags(t, cfg.Flags(), "--prompt-dir", "/path/does/not/exist")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}
