package profile

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
)

// User is a counsellor user. Accounts are managed outside of this service;
// the record is created when the user completes onboarding.
type User struct {
	ID                 types.UserID `firestore:"id" json:"id"`
	Name               string       `firestore:"name" json:"name"`
	Email              string       `firestore:"email" json:"email"`
	OnboardingComplete bool         `firestore:"onboarding_complete" json:"onboardingComplete"`
	Onboarding         *Onboarding  `firestore:"onboarding" json:"onboarding,omitempty"`
	CreatedAt          time.Time    `firestore:"created_at" json:"createdAt"`
}

// Onboarding is the study profile collected during onboarding
type Onboarding struct {
	EducationLevel     string   `firestore:"education_level" json:"educationLevel" yaml:"educationLevel"`
	Major              string   `firestore:"major" json:"major" yaml:"major"`
	GraduationYear     string   `firestore:"graduation_year" json:"graduationYear" yaml:"graduationYear"`
	GPA                string   `firestore:"gpa" json:"gpa" yaml:"gpa"`
	IntendedDegree     string   `firestore:"intended_degree" json:"intendedDegree" yaml:"intendedDegree"`
	FieldOfStudy       string   `firestore:"field_of_study" json:"fieldOfStudy" yaml:"fieldOfStudy"`
	IntakeYear         string   `firestore:"intake_year" json:"intakeYear" yaml:"intakeYear"`
	PreferredCountries []string `firestore:"preferred_countries" json:"preferredCountries" yaml:"preferredCountries"`
	Budget             string   `firestore:"budget" json:"budget" yaml:"budget"`
	FundingPlan        string   `firestore:"funding_plan" json:"fundingPlan" yaml:"fundingPlan"`
	TestStatus         string   `firestore:"test_status" json:"testStatus" yaml:"testStatus"`
	GREStatus          string   `firestore:"gre_status" json:"greStatus" yaml:"greStatus"`
	GREScore           string   `firestore:"gre_score" json:"greScore" yaml:"greScore"`
	SOPStatus          string   `firestore:"sop_status" json:"sopStatus" yaml:"sopStatus"`

	Recommendations *Recommendations `firestore:"university_recommendations" json:"universityRecommendations,omitempty" yaml:"universityRecommendations,omitempty"`
}

const (
	DefaultTestStatus = "not-started"
	DefaultGREStatus  = "not-required"
	DefaultSOPStatus  = "not-started"
)

// ApplyDefaults fills optional statuses that were left empty
func (x *Onboarding) ApplyDefaults() {
	if x.TestStatus == "" {
		x.TestStatus = DefaultTestStatus
	}
	if x.GREStatus == "" {
		x.GREStatus = DefaultGREStatus
	}
	if x.SOPStatus == "" {
		x.SOPStatus = DefaultSOPStatus
	}
}

// Validate checks that every mandatory answer is present.
func (x *Onboarding) Validate() error {
	if x == nil {
		return goerr.Wrap(errs.ErrOnboardingFieldsMissing, "onboarding is required", goerr.T(errs.TagValidation))
	}

	required := []struct {
		name  string
		value string
	}{
		{"educationLevel", x.EducationLevel},
		{"major", x.Major},
		{"graduationYear", x.GraduationYear},
		{"intendedDegree", x.IntendedDegree},
		{"fieldOfStudy", x.FieldOfStudy},
		{"intakeYear", x.IntakeYear},
		{"budget", x.Budget},
		{"fundingPlan", x.FundingPlan},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	hasCountry := false
	for _, c := range x.PreferredCountries {
		if strings.TrimSpace(c) != "" {
			hasCountry = true
			break
		}
	}
	if !hasCountry {
		missing = append(missing, "preferredCountries")
	}

	if len(missing) > 0 {
		return goerr.Wrap(errs.ErrOnboardingFieldsMissing, "invalid onboarding",
			goerr.V("fields", missing),
			goerr.T(errs.TagValidation))
	}
	return nil
}
