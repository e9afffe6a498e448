package prompt_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/service/prompt"
)

func testOnboarding() *profile.Onboarding {
	return &profile.Onboarding{
		EducationLevel:     "Bachelor's",
		Major:              "Computer Science",
		GPA:                "3.6",
		IntendedDegree:     "Master's",
		FieldOfStudy:       "Data Science",
		PreferredCountries: []string{"Germany", "Canada"},
		Budget:             "30000 USD",
		GREStatus:          "Completed",
		GREScore:           "318",
	}
}

func TestChatPrompt(t *testing.T) {
	ctx := context.Background()
	svc, err := prompt.New("")
	gt.NoError(t, err).Required()

	t.Run("with profile", func(t *testing.T) {
		p, err := svc.ChatPrompt(ctx, testOnboarding(), "What GRE score do I need?")
		gt.NoError(t, err).Required()

		gt.S(t, p).Contains("study abroad counsellor")
		gt.S(t, p).Contains("Student Profile:")
		gt.S(t, p).Contains("- Education: Bachelor's, Computer Science")
		gt.S(t, p).Contains("- Preferred Countries: Germany, Canada")
		gt.S(t, p).Contains("- GRE/GMAT Status: Completed (Score: 318)")
		gt.S(t, p).Contains("- Graduation Year: Not specified")
		gt.True(t, strings.HasSuffix(p, "\n\nStudent's message: What GRE score do I need?"))

		// instruction, profile and message in this order
		gt.True(t, strings.Index(p, "study abroad counsellor") < strings.Index(p, "Student Profile:"))
		gt.True(t, strings.Index(p, "Student Profile:") < strings.Index(p, "Student's message:"))
	})

	t.Run("without profile", func(t *testing.T) {
		p, err := svc.ChatPrompt(ctx, nil, "hello")
		gt.NoError(t, err).Required()
		gt.S(t, p).NotContains("Student Profile:")
		gt.True(t, strings.HasSuffix(p, "Student's message: hello"))
	})

	t.Run("empty countries", func(t *testing.T) {
		p, err := svc.ChatPrompt(ctx, &profile.Onboarding{}, "hello")
		gt.NoError(t, err).Required()
		gt.S(t, p).Contains("- Preferred Countries: Not specified")
	})
}

func TestRecommendationPrompt(t *testing.T) {
	ctx := context.Background()
	svc, err := prompt.New("")
	gt.NoError(t, err).Required()

	p, err := svc.RecommendationPrompt(ctx, testOnboarding())
	gt.NoError(t, err).Required()
	gt.S(t, p).Contains(`"dream"`)
	gt.S(t, p).Contains("- Field: Data Science")
	gt.S(t, p).Contains("- Preferred Countries: Germany, Canada")
	gt.S(t, p).Contains("- GPA: 3.6")

	_, err = svc.RecommendationPrompt(ctx, nil)
	gt.Error(t, err)
}

func TestPromptDirOverride(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	gt.NoError(t, os.WriteFile(filepath.Join(dir, prompt.TemplateCounsellor), []byte("You are a terse counsellor."), 0600))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.tmpl"), []byte("Hello {{.Name}}"), 0600))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.json"), []byte("{}"), 0600))

	svc, err := prompt.New(dir)
	gt.NoError(t, err).Required()

	p, err := svc.ChatPrompt(ctx, nil, "hi")
	gt.NoError(t, err).Required()
	gt.Equal(t, p, "You are a terse counsellor.\n\nStudent's message: hi")

	greeting, err := svc.Generate(ctx, "greeting.tmpl", map[string]string{"Name": "Asha"})
	gt.NoError(t, err)
	gt.Equal(t, greeting, "Hello Asha")

	_, err = svc.Generate(ctx, "ignored.json", nil)
	gt.Error(t, err)

	// built-in templates that are not overridden stay available
	_, err = svc.RecommendationPrompt(ctx, testOnboarding())
	gt.NoError(t, err)
}

func TestPromptDirErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := prompt.New(filepath.Join(t.TempDir(), "not-found"))
		gt.Error(t, err)
	})

	t.Run("broken template", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("{{.Name"), 0600))
		_, err := prompt.New(dir)
		gt.Error(t, err)
	})

	t.Run("unknown template", func(t *testing.T) {
		svc, err := prompt.New("")
		gt.NoError(t, err).Required()
		_, err = svc.Generate(context.Background(), "unknown.md", nil)
		gt.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	svc := prompt.Default()
	p, err := svc.ChatPrompt(context.Background(), nil, "hi")
	gt.NoError(t, err)
	gt.S(t, p).Contains("Student's message: hi")
}
