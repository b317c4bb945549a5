package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/inercia/llm-code/pkg/llm"
)

// maxListedFiles caps the /files listing
const maxListedFiles = 50

const helpText = `# LLM CLI Help

## Commands:
- **@filename** - Include a specific file in the context
- **/provider [name]** - Show or switch the provider
- **/context <question>** - Ask with every supported file in the directory as context
- **/clear** - Clear conversation history
- **/files** - Show all available files in current directory
- **/help** - Show this help message
- **/exit** or **Ctrl+C** - Exit the application

## Examples:
- ` + "`@main.go explain this code`" + `
- ` + "`/provider openai`" + `
- ` + "`@src/app.js @package.json how can I optimize this?`" + `
`

// handleCommand runs a slash command and reports whether the REPL should exit
func (r *REPL) handleCommand(ctx context.Context, input string) (exit bool) {
	fields := strings.Fields(input)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "/exit", "/quit":
		r.printer.Warn("Goodbye!")
		return true
	case "/help":
		r.printer.Markdown(helpText)
	case "/clear":
		r.session.ClearHistory()
		r.printer.Success("Conversation history cleared")
	case "/files":
		r.listFiles()
	case "/provider":
		if len(args) == 0 {
			r.showProviders()
		} else {
			r.switchProvider(args[0])
		}
	case "/context":
		question := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
		if question == "" {
			r.printer.Warn("Usage: /context <question>")
			return false
		}
		r.turn(ctx, question, r.session.ProcessDirectoryTurn)
	default:
		r.printer.Error("Unknown command: %s", command)
	}
	return false
}

func (r *REPL) listFiles() {
	files := r.session.ListSupportedFiles()
	if len(files) == 0 {
		r.printer.Warn("No supported files found in current directory")
		return
	}

	r.printer.Info("Available files:")
	for i, f := range files {
		if i == maxListedFiles {
			r.printer.Plain("  ... and %d more files", len(files)-maxListedFiles)
			break
		}
		r.printer.Plain("  - %s", f)
	}
}

func (r *REPL) showProviders() {
	current := r.session.ProviderName()
	if current == "" {
		current = "none"
	}
	r.printer.Info("Current provider: %s", current)

	available := r.session.AvailableProviders()
	if len(available) == 0 {
		r.printer.Plain("Available providers: none")
		return
	}
	r.printer.Plain("Available providers: %s", strings.Join(available, ", "))
}

func (r *REPL) switchProvider(name string) {
	err := r.session.SwitchProvider(name)
	switch {
	case err == nil:
		r.printer.Success("Switched to %s", r.session.ProviderName())
	case errors.Is(err, llm.ErrUnknownProvider):
		r.printer.Error("Error: unknown provider %s", name)
	case errors.Is(err, llm.ErrProviderNotConfigured):
		r.printer.Error("Error: %s is not configured properly. Check your API key.", name)
	default:
		r.printer.Error("Error initializing %s: %v", name, err)
	}
}
