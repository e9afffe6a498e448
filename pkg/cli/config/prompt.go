package config

import (
	"log/slog"

	"github.com/secmon-lab/counsellor/pkg/service/prompt"
	"github.com/urfave/cli/v3"
)

// Prompt configures prompt templates. Files in the directory override the
// built-in templates of the same name.
type Prompt struct {
	promptDir string
}

func (x *Prompt) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt-dir",
			Usage:       "Directory containing prompt template files",
			Category:    "Prompt",
			Sources:     cli.EnvVars("COUNSELLOR_PROMPT_DIR"),
			Destination: &x.promptDir,
		},
	}
}

func (x Prompt) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("prompt_dir", x.promptDir),
	)
}

func (x *Prompt) Configure() (*prompt.Service, error) {
	return prompt.New(x.promptDir)
}
