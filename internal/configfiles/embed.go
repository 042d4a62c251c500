// Package configfiles provides embedded configuration files for GitDocAI.
// These files are used as templates for initializing user configuration.
package configfiles

import (
	"embed"
)

//go:embed gitdocai.example.yaml
var configFS embed.FS

// GetConfigExample returns the example configuration file content
func GetConfigExample() ([]byte, error) {
	return configFS.ReadFile("gitdocai.example.yaml")
}
