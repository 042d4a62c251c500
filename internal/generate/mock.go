package generate

import (
	"fmt"
	"strings"
	"time"
)

// MockDocumentation builds the deterministic fallback document used when
// the upstream API is unreachable. It echoes the request fields so the
// output is recognizably tied to the request.
func MockDocumentation(req *Request) string {
	if req.IsTutorial() {
		return mockTutorial(req)
	}

	description := req.ProjectDescription
	if description == "" {
		description = "Auto-detected project description based on repository analysis."
	}

	var b strings.Builder
	b.WriteString("# 📚 Generated Documentation\n\n")
	b.WriteString("## 🎯 Project Overview\n")
	b.WriteString(description + "\n\n")
	b.WriteString("## 🚀 Quick Start\n\n")
	b.WriteString("### Prerequisites\n")
	b.WriteString("- Node.js (v18 or higher)\n")
	b.WriteString("- npm or yarn\n\n")
	b.WriteString("### Installation\n")
	b.WriteString("```bash\n")
	fmt.Fprintf(&b, "git clone %s\n", req.RepoURL)
	fmt.Fprintf(&b, "cd %s\n", req.RepoName())
	b.WriteString("npm install\n")
	b.WriteString("```\n\n")
	b.WriteString("### Usage\n")
	b.WriteString("```javascript\n")
	b.WriteString("// Example usage\n")
	b.WriteString("import { App } from './src/App';\n\n")
	b.WriteString("const app = new App();\n")
	b.WriteString("app.run();\n")
	b.WriteString("```\n\n")
	b.WriteString("## 📁 Project Structure\n")
	b.WriteString("```\n")
	b.WriteString("src/\n├── components/\n├── pages/\n└── lib/\n")
	b.WriteString("```\n\n")
	b.WriteString("## 🛠️ Technologies Used\n")
	if req.PrimaryLanguage != "" {
		fmt.Fprintf(&b, "- **Primary Language**: %s\n", req.PrimaryLanguage)
	}
	b.WriteString("- **Frontend**: React, TypeScript, Tailwind CSS\n")
	b.WriteString("- **Build Tool**: Vite\n\n")
	b.WriteString("## 📋 Included Sections\n")
	for _, component := range req.SelectedComponents {
		fmt.Fprintf(&b, "- %s\n", component)
	}
	b.WriteString("\n## 🤝 Contributing\n")
	b.WriteString("1. Fork the repository\n")
	b.WriteString("2. Create a feature branch\n")
	b.WriteString("3. Commit your changes\n")
	b.WriteString("4. Push to the branch\n")
	b.WriteString("5. Create a Pull Request\n\n")
	b.WriteString("## 📄 License\n")
	b.WriteString("MIT License - see LICENSE file for details.\n")
	return b.String()
}

// mockTutorial builds the fallback document for tutorial requests.
func mockTutorial(req *Request) string {
	title := titleCase(strings.ReplaceAll(req.TutorialType, "-", " "))

	var b strings.Builder
	fmt.Fprintf(&b, "# 🚀 %s Tutorial: %s\n\n", title, req.RepoName())
	fmt.Fprintf(&b, "> **Difficulty**: %s | **Tone**: %s\n\n", req.TargetAudience, req.Tone)
	b.WriteString("## 🎯 Learning Objectives\n")
	fmt.Fprintf(&b, "- Understand the %s workflow for this project\n", req.TutorialType)
	b.WriteString("- Set up a working local environment\n")
	b.WriteString("- Apply the project's conventions in your own changes\n\n")
	b.WriteString("## 🛠️ Setup\n")
	b.WriteString("```bash\n")
	fmt.Fprintf(&b, "git clone %s\n", req.RepoURL)
	fmt.Fprintf(&b, "cd %s\n", req.RepoName())
	b.WriteString("```\n\n")
	b.WriteString("## 📖 Walkthrough\n")
	b.WriteString("### Step 1: Explore the structure\n")
	b.WriteString("Start from the entry point and follow the imports.\n\n")
	b.WriteString("### Step 2: Run it locally\n")
	b.WriteString("Use the project's standard run command and verify the output.\n\n")
	b.WriteString("### Step 3: Make a change\n")
	b.WriteString("Pick a small, visible behavior and adjust it to confirm your setup.\n")
	return b.String()
}

// TutorialTitle returns the display title for a tutorial type, e.g.
// "getting-started" becomes "Getting Started Tutorial".
func TutorialTitle(tutorialType string) string {
	return titleCase(strings.ReplaceAll(tutorialType, "-", " ")) + " Tutorial"
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MockAnalysis builds the repository analysis reported by the mock
// fallback. Deterministic for a given request.
func MockAnalysis(req *Request) *RepoAnalysis {
	language := req.PrimaryLanguage
	if language == "" {
		language = "TypeScript"
	}
	return &RepoAnalysis{
		Name:         req.RepoName(),
		Description:  req.ProjectDescription,
		Language:     language,
		Technologies: []string{"React", "TypeScript", "Tailwind CSS", "Vite"},
		Structure: map[string]interface{}{
			"src": map[string]interface{}{
				"components": map[string]interface{}{},
				"pages":      map[string]interface{}{},
				"lib":        map[string]interface{}{},
			},
		},
		ReadmeExists: true,
		LicenseType:  "MIT",
		GitHistory:   []CommitInfo{},
	}
}

// MockResult assembles a full degraded result for a request, marking it
// as produced by the fallback and recording the failure reason.
func MockResult(req *Request, reason string) *Result {
	return &Result{
		Success:       true,
		Documentation: MockDocumentation(req),
		Degraded:      true,
		Metadata: map[string]interface{}{
			"mock":            true,
			"fallback_reason": reason,
			"repo_analysis":   MockAnalysis(req),
			"request_params":  req,
			"generated_at":    time.Now().UTC().Format(time.RFC3339),
		},
	}
}
