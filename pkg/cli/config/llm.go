package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// LLMCfg configures the LLM used for JSON answers such as university
// recommendations. Claude on Vertex AI is used if configured, otherwise
// Gemini on Vertex AI with the project of GeminiCfg.
type LLMCfg struct {
	claudeModel     string
	claudeProjectID string
	claudeLocation  string

	geminiModel string
}

func (x *LLMCfg) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Claude model name",
			Sources:     cli.EnvVars("COUNSELLOR_CLAUDE_MODEL"),
			Value:       "claude-sonnet-4@20250514",
			Destination: &x.claudeModel,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "claude-project-id",
			Usage:       "Google Cloud Project ID for Claude Vertex AI",
			Sources:     cli.EnvVars("COUNSELLOR_CLAUDE_PROJECT_ID"),
			Destination: &x.claudeProjectID,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "claude-location",
			Usage:       "Google Cloud location for Claude Vertex AI",
			Sources:     cli.EnvVars("COUNSELLOR_CLAUDE_LOCATION"),
			Value:       "us-east5",
			Destination: &x.claudeLocation,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "recommendation-model",
			Usage:       "Gemini model for university recommendations",
			Destination: &x.geminiModel,
			Category:    "Gemini",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("COUNSELLOR_RECOMMENDATION_MODEL"),
		},
	}
}

func (x LLMCfg) LogValue() slog.Value {
	attrs := []slog.Attr{}

	if x.claudeProjectID != "" {
		attrs = append(attrs,
			slog.String("claude_model", x.claudeModel),
			slog.String("claude_project_id", x.claudeProjectID),
			slog.String("claude_location", x.claudeLocation),
		)
	}
	attrs = append(attrs, slog.String("recommendation_model", x.geminiModel))

	return slog.GroupValue(attrs...)
}

// Configure returns the LLM client for recommendations. It returns nil
// without error if no provider can be configured, and recommendations are
// disabled then.
func (x *LLMCfg) Configure(ctx context.Context, gem *GeminiCfg) (gollem.LLMClient, error) {
	if x.claudeProjectID != "" {
		return x.configureClaude(ctx)
	}

	if gem != nil && gem.ProjectID() != "" {
		return x.configureGemini(ctx, gem.ProjectID(), gem.Location())
	}

	logging.From(ctx).Warn("no Vertex AI project for recommendations, university recommendations are disabled")
	return nil, nil
}

func (x *LLMCfg) configureClaude(ctx context.Context) (gollem.LLMClient, error) {
	options := []claude.VertexOption{
		claude.WithVertexModel(x.claudeModel),
	}

	client, err := claude.NewWithVertex(ctx, x.claudeLocation, x.claudeProjectID, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Claude Vertex AI client",
			goerr.V("projectID", x.claudeProjectID),
			goerr.V("location", x.claudeLocation),
			goerr.V("model", x.claudeModel))
	}

	return client, nil
}

func (x *LLMCfg) configureGemini(ctx context.Context, projectID, location string) (gollem.LLMClient, error) {
	client, err := gemini.New(ctx, projectID, location, gemini.WithModel(x.geminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("projectID", projectID),
			goerr.V("location", location),
			goerr.V("model", x.geminiModel))
	}

	return client, nil
}

// GetActiveProvider returns the name of the LLM provider for recommendations
func (x *LLMCfg) GetActiveProvider(gem *GeminiCfg) string {
	if x.claudeProjectID != "" {
		return "claude"
	}
	if gem != nil && gem.ProjectID() != "" {
		return "gemini"
	}
	return "none"
}
