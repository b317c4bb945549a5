package chat

import (
	"go.uber.org/zap"

	"github.com/inercia/llm-code/pkg/llm"
	"github.com/inercia/llm-code/pkg/workspace"
)

// Workspace resolves file references and loads file contents
type Workspace interface {
	Resolve(raw string) ([]string, string)
	LoadFiles(paths []string) []workspace.Block
	LoadDirectory(maxFiles int) []workspace.Block
	ListSupportedFiles() []string
}

// Registry builds providers by backend identifier
type Registry interface {
	Has(name string) bool
	Names() []string
	Create(name string, cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error)
}

// ConfigSource gives the per-backend configuration
type ConfigSource interface {
	Lookup(name string) (llm.ProviderConfig, bool)
	IsUsable(name string) bool
}

// Observer is told about the progress of a turn, so a front end can report it
type Observer interface {
	// FilesLoading is called with the resolved references before they are read
	FilesLoading(files []string)

	// FileWarning is called for every referenced file that could not be read
	FileWarning(block workspace.Block)

	// Generating is called right before the provider is asked for a reply
	Generating(provider string)
}

type nopObserver struct{}

func (nopObserver) FilesLoading([]string)       {}
func (nopObserver) FileWarning(workspace.Block) {}
func (nopObserver) Generating(string)           {}
