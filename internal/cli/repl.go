package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/inercia/llm-code/pkg/llm"
)

// Session is the conversation the REPL drives
type Session interface {
	ProcessTurn(ctx context.Context, input string) (string, error)
	ProcessDirectoryTurn(ctx context.Context, input string) (string, error)
	SwitchProvider(name string) error
	ClearHistory()
	ListSupportedFiles() []string
	ProviderName() string
	AvailableProviders() []string
}

// REPL is the interactive read-eval-print loop
type REPL struct {
	session     Session
	printer     *Printer
	logger      *zap.Logger
	files       []string
	historyPath string
}

// Option configures a REPL
type Option func(*REPL)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *REPL) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHistoryFile persists the input history in path
func WithHistoryFile(path string) Option {
	return func(r *REPL) {
		r.historyPath = path
	}
}

// New creates a REPL. The file completion candidates are taken from the
// session once, here.
func New(session Session, printer *Printer, opts ...Option) *REPL {
	r := &REPL{
		session: session,
		printer: printer,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("cli")
	r.files = session.ListSupportedFiles()
	return r
}

// Run reads lines until /exit, Ctrl+C or Ctrl+D
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetWordCompleter(r.complete)
	line.SetTabCompletionStyle(liner.TabPrints)
	r.loadHistory(line)
	defer r.saveHistory(line)

	r.printer.Banner()
	if name := r.session.ProviderName(); name != "" {
		r.printer.Success("Using %s provider", name)
	} else {
		r.printer.Error("Error: No provider initialized. Please check your API keys.")
	}
	r.printer.Dim("Type your message or /help for commands")
	r.printer.Plain("")

	for {
		input, err := line.Prompt("You: ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				r.logger.Warn("reading input", zap.Error(err))
			}
			r.printer.Plain("")
			r.printer.Warn("Goodbye!")
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if r.handleLine(ctx, input) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handleLine processes one input line and reports whether the REPL should exit
func (r *REPL) handleLine(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasPrefix(input, "/") {
		return r.handleCommand(ctx, input)
	}
	r.turn(ctx, input, r.session.ProcessTurn)
	return false
}

// turn runs one conversation turn. Ctrl+C while waiting cancels the request.
func (r *REPL) turn(ctx context.Context, input string, process func(context.Context, string) (string, error)) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	reply, err := process(ctx, input)
	if errors.Is(err, llm.ErrNoProvider) {
		r.printer.Error("Error: No provider initialized. Please check your API keys.")
		return
	}
	if err != nil {
		r.printer.Error("Error: %v", err)
		return
	}
	r.printer.Reply(reply)
	r.printer.Plain("")
}

// complete offers workspace files for the @word under the cursor, matching
// the partial name as a case-insensitive substring
func (r *REPL) complete(line string, pos int) (head string, completions []string, tail string) {
	if pos > len(line) {
		pos = len(line)
	}
	start := strings.LastIndexAny(line[:pos], " \t") + 1
	head, word, tail := line[:start], line[start:pos], line[pos:]
	if !strings.HasPrefix(word, "@") {
		return head, nil, tail
	}

	partial := strings.ToLower(word[1:])
	for _, f := range r.files {
		if strings.Contains(strings.ToLower(f), partial) {
			completions = append(completions, "@"+f)
		}
	}
	return head, completions, tail
}

func (r *REPL) loadHistory(line *liner.State) {
	if r.historyPath == "" {
		return
	}
	f, err := os.Open(r.historyPath)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		r.logger.Debug("reading history", zap.Error(err))
	}
}

func (r *REPL) saveHistory(line *liner.State) {
	if r.historyPath == "" {
		return
	}
	f, err := os.OpenFile(r.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		r.logger.Debug("saving history", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		r.logger.Debug("saving history", zap.Error(err))
	}
}
