package errs

import (
	"errors"
)

var ErrLLMNotConfigured = errors.New("LLM client is not configured")
var ErrOnboardingIncomplete = errors.New("onboarding is not completed")
var ErrOnboardingFieldsMissing = errors.New("mandatory onboarding fields are missing")
var ErrOnboardingNotFound = errors.New("onboarding record not found")
