package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/adapter/gemini"
	"github.com/urfave/cli/v3"
)

// GeminiCfg configures the streaming client used for chat answers
type GeminiCfg struct {
	apiKey      string
	projectID   string
	location    string
	model       string
	temperature float64
}

func (x *GeminiCfg) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (Gemini Developer API)",
			Destination: &x.apiKey,
			Category:    "Gemini",
			Sources:     cli.EnvVars("COUNSELLOR_GEMINI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "GCP Project ID for Vertex AI, used when no API key is given",
			Destination: &x.projectID,
			Category:    "Gemini",
			Sources:     cli.EnvVars("COUNSELLOR_GEMINI_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "GCP Location for Vertex AI",
			Value:       "us-central1",
			Destination: &x.location,
			Category:    "Gemini",
			Sources:     cli.EnvVars("COUNSELLOR_GEMINI_LOCATION"),
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model for chat answers",
			Value:       gemini.DefaultModel,
			Destination: &x.model,
			Category:    "Gemini",
			Sources:     cli.EnvVars("COUNSELLOR_GEMINI_MODEL"),
		},
		&cli.FloatFlag{
			Name:        "gemini-temperature",
			Usage:       "Sampling temperature for chat answers (negative: model default)",
			Value:       -1,
			Destination: &x.temperature,
			Category:    "Gemini",
			Sources:     cli.EnvVars("COUNSELLOR_GEMINI_TEMPERATURE"),
		},
	}
}

func (x GeminiCfg) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("api_key", x.apiKey != ""),
		slog.String("project_id", x.projectID),
		slog.String("location", x.location),
		slog.String("model", x.model),
		slog.Float64("temperature", x.temperature),
	)
}

// IsConfigured returns true if an API key or a Vertex AI project is set
func (x *GeminiCfg) IsConfigured() bool {
	return x.apiKey != "" || x.projectID != ""
}

func (x *GeminiCfg) ProjectID() string {
	return x.projectID
}

func (x *GeminiCfg) Location() string {
	return x.location
}

func (x *GeminiCfg) Configure(ctx context.Context) (*gemini.Streamer, error) {
	if !x.IsConfigured() {
		return nil, goerr.New("gemini-api-key or gemini-project-id is required")
	}

	client, err := gemini.NewClient(ctx, x.apiKey, x.projectID, x.location)
	if err != nil {
		return nil, err
	}

	options := []gemini.Option{
		gemini.WithModel(x.model),
	}
	if x.temperature >= 0 {
		options = append(options, gemini.WithTemperature(float32(x.temperature)))
	}

	streamer, err := gemini.New(client, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini streamer", goerr.V("model", x.model))
	}
	return streamer, nil
}
