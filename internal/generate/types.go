// Package generate implements the documentation generation lifecycle:
// the upstream API client with its deterministic mock fallback, and the
// controller that drives simulated progress alongside the real call.
package generate

import (
	"strings"

	apperrors "github.com/gitdocai/gitdocai/pkg/errors"
)

// Target audience levels accepted by the upstream API.
const (
	AudienceBeginner     = "beginner"
	AudienceIntermediate = "intermediate"
	AudienceAdvanced     = "advanced"
)

// Writing tones accepted by the upstream API.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneTechnical    = "technical"
	ToneFun          = "fun"
)

// Output formats accepted by the upstream API.
const (
	FormatReadme   = "readme"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// Tutorial types for tutorial generations. The type is part of the
// export filename contract (tutorial-<type>.md).
const (
	TutorialGettingStarted   = "getting-started"
	TutorialAdvancedFeatures = "advanced-features"
	TutorialIntegration      = "integration"
	TutorialDeployment       = "deployment"
	TutorialBestPractices    = "best-practices"
	TutorialTroubleshooting  = "troubleshooting"
)

// TutorialTypes lists the supported tutorial types in display order.
var TutorialTypes = []string{
	TutorialGettingStarted,
	TutorialAdvancedFeatures,
	TutorialIntegration,
	TutorialDeployment,
	TutorialBestPractices,
	TutorialTroubleshooting,
}

// ValidTutorialType reports whether t is a supported tutorial type.
func ValidTutorialType(t string) bool {
	for _, known := range TutorialTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultComponents returns the default documentation component set
// applied when a request does not select any.
func DefaultComponents() []string {
	return []string{
		"overview",
		"readme",
		"installation",
		"usage",
		"structure",
		"technologies",
		"contributing",
		"license",
	}
}

// Request is the generation request sent to the upstream API. Field
// names are part of the wire contract.
type Request struct {
	RepoURL            string   `json:"repo_url"`
	ProjectDescription string   `json:"project_description,omitempty"`
	TargetAudience     string   `json:"target_audience"`
	Tone               string   `json:"tone"`
	OutputFormat       string   `json:"output_format"`
	PrimaryLanguage    string   `json:"primary_language,omitempty"`
	SelectedComponents []string `json:"selected_components"`

	// TutorialType marks the request as a tutorial generation. It is a
	// service-side extension and is not sent upstream.
	TutorialType string `json:"tutorial_type,omitempty"`
}

// ApplyDefaults fills the upstream API defaults for unset fields.
func (r *Request) ApplyDefaults() {
	if r.TargetAudience == "" {
		r.TargetAudience = AudienceIntermediate
	}
	if r.Tone == "" {
		r.Tone = ToneProfessional
	}
	if r.OutputFormat == "" {
		r.OutputFormat = FormatReadme
	}
	if len(r.SelectedComponents) == 0 {
		r.SelectedComponents = DefaultComponents()
	}
}

// Validate checks the request before any network call is made.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.RepoURL) == "" {
		return apperrors.ErrValidation("repo_url is required")
	}
	switch r.TargetAudience {
	case "", AudienceBeginner, AudienceIntermediate, AudienceAdvanced:
	default:
		return apperrors.ErrValidation("invalid target_audience: " + r.TargetAudience)
	}
	switch r.Tone {
	case "", ToneProfessional, ToneFriendly, ToneTechnical, ToneFun:
	default:
		return apperrors.ErrValidation("invalid tone: " + r.Tone)
	}
	switch r.OutputFormat {
	case "", FormatReadme, FormatMarkdown, FormatHTML, FormatPDF:
	default:
		return apperrors.ErrValidation("invalid output_format: " + r.OutputFormat)
	}
	if r.TutorialType != "" && !ValidTutorialType(r.TutorialType) {
		return apperrors.ErrValidation("invalid tutorial_type: " + r.TutorialType)
	}
	return nil
}

// IsTutorial reports whether the request asks for a tutorial.
func (r *Request) IsTutorial() bool {
	return r.TutorialType != ""
}

// RepoName derives the repository name from the request URL, used for
// mock analysis and document titles.
func (r *Request) RepoName() string {
	u := strings.TrimSuffix(strings.TrimRight(r.RepoURL, "/"), ".git")
	if idx := strings.LastIndex(u, "/"); idx >= 0 && idx < len(u)-1 {
		return u[idx+1:]
	}
	return u
}

// CommitInfo is one entry of the repository git history.
type CommitInfo struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// RepoAnalysis describes the analyzed repository, as reported in the
// response metadata under "repo_analysis".
type RepoAnalysis struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	Language     string                 `json:"language,omitempty"`
	Technologies []string               `json:"technologies"`
	Structure    map[string]interface{} `json:"structure"`
	ReadmeExists bool                   `json:"readme_exists"`
	LicenseType  string                 `json:"license_type,omitempty"`
	GitHistory   []CommitInfo           `json:"git_history"`
}

// Result is the generation response. Success=false carries an
// application-level error message; transport failures never reach the
// caller as errors, they degrade to a mock result instead.
type Result struct {
	Success       bool                   `json:"success"`
	Documentation string                 `json:"documentation,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`

	// Degraded marks a result produced by the mock fallback after an
	// upstream transport failure. Also recorded as metadata["mock"].
	Degraded bool `json:"degraded,omitempty"`
}

// HealthStatus is the upstream health probe response.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Healthy reports whether the upstream declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}
