package cli_test

import (
	"bytes"
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/cli"
	"github.com/secmon-lab/counsellor/pkg/repository"
	"github.com/secmon-lab/counsellor/pkg/usecase"
)

type echoStreamer struct {
	prompts []string
}

func (x *echoStreamer) StreamText(ctx context.Context, prompt string) iter.Seq2[string, error] {
	x.prompts = append(x.prompts, prompt)
	return func(yield func(string, error) bool) {
		for _, f := range []string{"Sure, ", "here you go."} {
			if !yield(f, nil) {
				return
			}
		}
	}
}

func TestRunSingleQuery(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	streamer := &echoStreamer{}
	uc := usecase.New(usecase.WithRepository(repo), usecase.WithTextStreamer(streamer))

	var out bytes.Buffer
	gt.NoError(t, cli.RunSingleQuery(ctx, uc, "cli-user", "Which country?", &out))
	gt.Equal(t, out.String(), "Sure, here you go.\n")

	histories, err := repo.ListChatHistories(ctx, "cli-user")
	gt.NoError(t, err)
	gt.A(t, histories).Length(1)
	gt.Equal(t, histories[0].Response, "Sure, here you go.")
}

func TestRunInteractiveMode(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := usecase.New(usecase.WithRepository(repo), usecase.WithTextStreamer(&echoStreamer{}))

	in := strings.NewReader("first question\n\nsecond question\nexit\nnever asked\n")
	var out bytes.Buffer
	gt.NoError(t, cli.RunInteractiveMode(ctx, uc, "cli-user", in, &out))
	gt.S(t, out.String()).Contains("Session ended")

	histories, err := repo.ListChatHistories(ctx, "cli-user")
	gt.NoError(t, err)
	gt.A(t, histories).Length(2)
	gt.Equal(t, histories[0].Message, "first question")
	gt.Equal(t, histories[1].Message, "second question")
}

func TestRunInteractiveModeEOF(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := usecase.New(usecase.WithRepository(repo), usecase.WithTextStreamer(&echoStreamer{}))

	var out bytes.Buffer
	gt.NoError(t, cli.RunInteractiveMode(ctx, uc, "cli-user", strings.NewReader("last question"), &out))

	histories, err := repo.ListChatHistories(ctx, "cli-user")
	gt.NoError(t, err)
	gt.A(t, histories).Length(1)
}

func TestLoadProfile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")
	gt.NoError(t, os.WriteFile(path, []byte(`{"fieldOfStudy":"Economics","preferredCountries":["Netherlands"]}`), 0600))

	repo := repository.NewMemory()
	gt.NoError(t, cli.LoadProfile(ctx, repo, "cli-user", path))

	streamer := &echoStreamer{}
	uc := usecase.New(usecase.WithRepository(repo), usecase.WithTextStreamer(streamer))
	var out bytes.Buffer
	gt.NoError(t, cli.RunSingleQuery(ctx, uc, "cli-user", "Any advice?", &out))
	gt.S(t, streamer.prompts[0]).Contains("- Field of Study: Economics")
	gt.S(t, streamer.prompts[0]).Contains("- Preferred Countries: Netherlands")

	t.Run("yaml profile", func(t *testing.T) {
		yamlPath := filepath.Join(t.TempDir(), "profile.yaml")
		gt.NoError(t, os.WriteFile(yamlPath, []byte("fieldOfStudy: Public Health\ngpa: 3.8\npreferredCountries:\n  - Germany\n  - Canada\n"), 0600))

		yamlRepo := repository.NewMemory()
		gt.NoError(t, cli.LoadProfile(ctx, yamlRepo, "yaml-user", yamlPath))

		u, err := yamlRepo.GetUser(ctx, "yaml-user")
		gt.NoError(t, err).Required()
		gt.True(t, u.OnboardingComplete)
		gt.Equal(t, u.Onboarding.FieldOfStudy, "Public Health")
		gt.Equal(t, u.Onboarding.GPA, "3.8")
		gt.Equal(t, u.Onboarding.PreferredCountries, []string{"Germany", "Canada"})
	})

	t.Run("broken file", func(t *testing.T) {
		brokenPath := filepath.Join(t.TempDir(), "broken.yaml")
		gt.NoError(t, os.WriteFile(brokenPath, []byte("preferredCountries: [unclosed"), 0600))
		gt.Error(t, cli.LoadProfile(ctx, repo, "cli-user", brokenPath))
	})

	t.Run("missing file", func(t *testing.T) {
		gt.Error(t, cli.LoadProfile(ctx, repo, "cli-user", filepath.Join(t.TempDir(), "none.json")))
	})
}
