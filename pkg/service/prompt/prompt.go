package prompt

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
)

const (
	TemplateCounsellor     = "counsellor.md"
	TemplateProfile        = "profile.md"
	TemplateRecommendation = "recommendation.md"

	messageLabel = "Student's message: "
)

//go:embed templates/*.md
var defaultTemplates embed.FS

var funcMap = template.FuncMap{
	"join": strings.Join,
}

// Service renders counsellor prompts. Built-in templates can be replaced by
// files with the same name in a prompt directory.
type Service struct {
	templates map[string]*template.Template
}

var _ interfaces.PromptService = &Service{}

func New(promptDir string) (*Service, error) {
	service := &Service{
		templates: make(map[string]*template.Template),
	}

	if err := service.loadDefaults(); err != nil {
		return nil, err
	}

	if promptDir != "" {
		if err := service.loadTemplates(promptDir); err != nil {
			return nil, goerr.Wrap(err, "failed to load prompt templates", goerr.TV(errutil.FilePathKey, promptDir))
		}
	}

	return service, nil
}

// Default returns a Service with the built-in templates only. It panics if
// they cannot be parsed.
func Default() *Service {
	svc, err := New("")
	if err != nil {
		panic(err)
	}
	return svc
}

func (s *Service) loadDefaults() error {
	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return goerr.Wrap(err, "failed to read embedded templates")
	}

	for _, entry := range entries {
		data, err := fs.ReadFile(defaultTemplates, "templates/"+entry.Name())
		if err != nil {
			return goerr.Wrap(err, "failed to read embedded template", goerr.V("name", entry.Name()))
		}
		if err := s.parse(entry.Name(), string(data)); err != nil {
			return err
		}
	}

	return nil
}

// loadTemplates loads all template files from the specified directory
func (s *Service) loadTemplates(promptDir string) error {
	if _, err := os.Stat(promptDir); os.IsNotExist(err) {
		return goerr.New("prompt directory does not exist", goerr.TV(errutil.FilePathKey, promptDir))
	}

	var loadedFiles []string

	err := filepath.Walk(promptDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return goerr.Wrap(err, "failed to walk prompt directory", goerr.TV(errutil.FilePathKey, path))
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".txt" && ext != ".tmpl" && ext != ".md" {
			return nil
		}

		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return goerr.Wrap(err, "failed to read template", goerr.TV(errutil.FilePathKey, path))
		}

		name := filepath.Base(path)
		if err := s.parse(name, string(data)); err != nil {
			return goerr.Wrap(err, "failed to parse template", goerr.TV(errutil.FilePathKey, path))
		}

		loadedFiles = append(loadedFiles, name)
		return nil
	})
	if err != nil {
		return err
	}

	if len(loadedFiles) > 0 {
		logging.Default().Info("loaded prompt templates",
			"prompt_dir", promptDir,
			"files", loadedFiles,
			"count", len(loadedFiles))
	} else {
		logging.Default().Warn("no prompt template files found, use built-in prompts",
			"prompt_dir", promptDir,
			"supported_extensions", []string{".txt", ".tmpl", ".md"})
	}

	return nil
}

func (s *Service) parse(name, text string) error {
	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return goerr.Wrap(err, "failed to parse template", goerr.V("name", name))
	}
	s.templates[name] = tmpl
	return nil
}

// Generate renders a template by its file name
func (s *Service) Generate(ctx context.Context, name string, data any) (string, error) {
	tmpl, exists := s.templates[name]
	if !exists {
		return "", goerr.New("prompt template not found", goerr.V("template_name", name))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute prompt template", goerr.V("template_name", name))
	}

	prompt := strings.TrimSpace(buf.String())

	logging.From(ctx).Debug("generated prompt from template",
		"template_name", name,
		"prompt_length", len(prompt))

	return prompt, nil
}

// ChatPrompt builds the single prompt sent upstream for a chat message: the
// counsellor instruction, the student's profile if any, then the message.
func (s *Service) ChatPrompt(ctx context.Context, onboarding *profile.Onboarding, message string) (string, error) {
	system, err := s.Generate(ctx, TemplateCounsellor, nil)
	if err != nil {
		return "", err
	}

	parts := []string{system}
	if onboarding != nil {
		profileContext, err := s.Generate(ctx, TemplateProfile, onboarding)
		if err != nil {
			return "", err
		}
		parts = append(parts, profileContext)
	}
	parts = append(parts, messageLabel+message)

	return strings.Join(parts, "\n\n"), nil
}

// RecommendationPrompt builds the JSON prompt for university recommendations
func (s *Service) RecommendationPrompt(ctx context.Context, onboarding *profile.Onboarding) (string, error) {
	if onboarding == nil {
		return "", goerr.New("onboarding profile is required")
	}
	return s.Generate(ctx, TemplateRecommendation, onboarding)
}
