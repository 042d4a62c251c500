// Package gitrepo analyzes GitHub repositories through the GitHub API:
// metadata, technology detection, directory structure and recent
// commit history feeding the generation metadata.
package gitrepo

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gitdocai/gitdocai/internal/generate"
	apperrors "github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

const (
	// historyLimit bounds the commit history in the analysis
	historyLimit = 10
	// structureMaxDepth bounds the reported directory tree depth
	structureMaxDepth = 3
)

// Config holds the analyzer configuration. The token is injected; the
// analyzer never reads the environment.
type Config struct {
	// Token is an optional GitHub access token. Empty means anonymous
	// access to public repositories.
	Token string
}

// Analyzer inspects repositories via the GitHub API.
type Analyzer struct {
	client *github.Client
}

// NewAnalyzer creates an analyzer, authenticated when a token is set.
func NewAnalyzer(cfg Config) *Analyzer {
	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return &Analyzer{client: github.NewClient(httpClient)}
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// Accepts https://, http://, git@ and bare host/owner/repo forms.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	url := strings.TrimSuffix(strings.TrimSpace(repoURL), ".git")
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "git@")
	url = strings.TrimSuffix(url, "/")

	// git@github.com:owner/repo -> github.com/owner/repo
	if idx := strings.Index(url, ":"); idx != -1 && !strings.Contains(url[:idx], "/") {
		url = url[:idx] + "/" + url[idx+1:]
	}

	parts := strings.Split(url, "/")
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return "", "", apperrors.ErrValidation("invalid repository URL: " + repoURL)
	}
	return parts[1], parts[2], nil
}

// Analyze builds the repository analysis for a GitHub repository URL.
func (a *Analyzer) Analyze(ctx context.Context, repoURL string) (*generate.RepoAnalysis, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	repository, _, err := a.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, repo, err)
	}

	analysis := &generate.RepoAnalysis{
		Name:         repository.GetName(),
		Description:  repository.GetDescription(),
		Language:     repository.GetLanguage(),
		Technologies: []string{},
		Structure:    map[string]interface{}{},
		LicenseType:  classifyLicense(repository.GetLicense()),
		GitHistory:   []generate.CommitInfo{},
	}

	// Languages by byte count, most used first.
	if languages, _, err := a.client.Repositories.ListLanguages(ctx, owner, repo); err == nil {
		analysis.Technologies = rankLanguages(languages)
	} else {
		logger.Debug("Failed to list repository languages",
			zap.String("repo", owner+"/"+repo), zap.Error(err))
	}

	// Root-level marker files refine the technology list.
	if _, rootEntries, _, err := a.client.Repositories.GetContents(ctx, owner, repo, "", nil); err == nil {
		names := make([]string, 0, len(rootEntries))
		for _, entry := range rootEntries {
			names = append(names, entry.GetName())
		}
		analysis.Technologies = mergeUnique(analysis.Technologies, DetectRootTechnologies(names))
	}

	if readme, _, err := a.client.Repositories.GetReadme(ctx, owner, repo, nil); err == nil && readme != nil {
		analysis.ReadmeExists = true
	}

	branch := repository.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	if tree, _, err := a.client.Git.GetTree(ctx, owner, repo, branch, true); err == nil {
		paths := make([]string, 0, len(tree.Entries))
		for _, entry := range tree.Entries {
			if entry.GetType() == "tree" {
				paths = append(paths, entry.GetPath()+"/")
			} else {
				paths = append(paths, entry.GetPath())
			}
		}
		analysis.Structure = BuildStructure(paths, structureMaxDepth)
	} else {
		logger.Debug("Failed to fetch repository tree",
			zap.String("repo", owner+"/"+repo), zap.Error(err))
	}

	commits, _, err := a.client.Repositories.ListCommits(ctx, owner, repo,
		&github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: historyLimit}})
	if err == nil {
		analysis.GitHistory = commitHistory(commits)
	}

	logger.Debug("Repository analyzed",
		zap.String("repo", owner+"/"+repo),
		zap.String("language", analysis.Language),
		zap.Int("technologies", len(analysis.Technologies)),
	)
	return analysis, nil
}

// classifyLicense maps a GitHub license to the coarse license families
// reported in the analysis.
func classifyLicense(license *github.License) string {
	if license == nil {
		return ""
	}
	id := strings.ToUpper(license.GetSPDXID() + " " + license.GetName())
	switch {
	case strings.Contains(id, "MIT"):
		return "MIT"
	case strings.Contains(id, "APACHE"):
		return "Apache 2.0"
	case strings.Contains(id, "GPL"):
		return "GPL"
	case strings.Contains(id, "BSD"):
		return "BSD"
	default:
		return "Custom"
	}
}

// rankLanguages orders the language byte map by descending size.
func rankLanguages(languages map[string]int) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if languages[names[i]] != languages[names[j]] {
			return languages[names[i]] > languages[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// rootMarkers maps well-known root files to the technology they imply.
var rootMarkers = map[string]string{
	"package.json":       "Node.js",
	"requirements.txt":   "Python",
	"Dockerfile":         "Docker",
	"docker-compose.yml": "Docker Compose",
	"Cargo.toml":         "Rust",
	"go.mod":             "Go",
	"pom.xml":            "Maven",
	"build.gradle":       "Gradle",
	"composer.json":      "PHP/Composer",
}

// DetectRootTechnologies infers technologies from root-level file names.
func DetectRootTechnologies(names []string) []string {
	found := make([]string, 0, 4)
	for _, name := range names {
		if tech, ok := rootMarkers[name]; ok {
			found = append(found, tech)
		}
	}
	sort.Strings(found)
	return found
}

// mergeUnique appends items from extra that are not already present.
func mergeUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, item := range base {
		seen[item] = true
	}
	for _, item := range extra {
		if !seen[item] {
			base = append(base, item)
			seen[item] = true
		}
	}
	return base
}

// skippedDirs are pruned from the reported structure.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	"env":          true,
}

// BuildStructure converts a flat list of repository paths into a nested
// map limited to maxDepth levels. Directory keys carry a trailing
// slash; files map to "file". Hidden entries and dependency
// directories are skipped.
func BuildStructure(paths []string, maxDepth int) map[string]interface{} {
	root := map[string]interface{}{}

	for _, p := range paths {
		isDir := strings.HasSuffix(p, "/")
		segments := strings.Split(strings.TrimSuffix(p, "/"), "/")
		if len(segments) > maxDepth {
			continue
		}

		node := root
		for i, segment := range segments {
			if strings.HasPrefix(segment, ".") || skippedDirs[segment] {
				break
			}
			if i == len(segments)-1 && !isDir {
				node[segment] = "file"
				break
			}
			child, ok := node[segment+"/"].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[segment+"/"] = child
			}
			node = child
		}
	}
	return root
}

// commitHistory converts GitHub commits to the analysis history shape:
// short hash, trimmed message, author name, ISO timestamp.
func commitHistory(commits []*github.RepositoryCommit) []generate.CommitInfo {
	history := make([]generate.CommitInfo, 0, len(commits))
	for _, c := range commits {
		sha := c.GetSHA()
		if len(sha) > 8 {
			sha = sha[:8]
		}
		info := generate.CommitInfo{
			Hash:    sha,
			Message: strings.TrimSpace(c.GetCommit().GetMessage()),
		}
		if author := c.GetCommit().GetAuthor(); author != nil {
			info.Author = author.GetName()
			info.Date = author.GetDate().Format(time.RFC3339)
		}
		history = append(history, info)
	}
	return history
}
