package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inercia/llm-code/pkg/llm"
	"github.com/inercia/llm-code/pkg/workspace"
)

// contextHeader introduces the file contents merged into a user message
const contextHeader = "Here are the files for context:"

// Session is one conversation with one active provider at a time
type Session struct {
	// turnMu serializes turns, switches and clears
	turnMu sync.Mutex

	// mu guards provider and history for concurrent readers
	mu       sync.RWMutex
	provider llm.Provider
	history  []llm.Message

	workspace   Workspace
	registry    Registry
	configs     ConfigSource
	logger      *zap.Logger
	observer    Observer
	middlewares []llm.Middleware
	genOpts     []llm.GenerateOption
	maxFiles    int
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the turn progress observer
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithMiddleware wraps every provider the session activates
func WithMiddleware(middlewares ...llm.Middleware) Option {
	return func(s *Session) {
		s.middlewares = append(s.middlewares, middlewares...)
	}
}

// WithGenerateOptions sets the options passed to every Generate call
func WithGenerateOptions(opts ...llm.GenerateOption) Option {
	return func(s *Session) {
		s.genOpts = append(s.genOpts, opts...)
	}
}

// WithMaxFiles caps directory scans. Non-positive values use
// workspace.DefaultMaxFiles.
func WithMaxFiles(n int) Option {
	return func(s *Session) {
		s.maxFiles = n
	}
}

// NewSession creates a session with no active provider
func NewSession(ws Workspace, registry Registry, configs ConfigSource, opts ...Option) *Session {
	s := &Session{
		workspace: ws,
		registry:  registry,
		configs:   configs,
		logger:    zap.NewNop(),
		observer:  nopObserver{},
		maxFiles:  workspace.DefaultMaxFiles,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("chat")
	return s
}

// SwitchProvider activates the named backend and clears the history. On
// failure the previous provider and history are kept.
func (s *Session) SwitchProvider(name string) error {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if !s.registry.Has(name) {
		return fmt.Errorf("%w: %s", llm.ErrUnknownProvider, name)
	}

	cfg, ok := s.configs.Lookup(name)
	if !ok || !s.configs.IsUsable(name) {
		return fmt.Errorf("%w: %s", llm.ErrProviderNotConfigured, name)
	}

	provider, err := s.registry.Create(name, cfg, s.logger)
	if err != nil {
		return fmt.Errorf("switching to %s: %w", name, err)
	}
	provider = llm.WithMiddleware(provider, s.middlewares...)

	s.mu.Lock()
	s.provider = provider
	s.history = nil
	s.mu.Unlock()

	s.logger.Info("provider switched",
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()))
	return nil
}

// ProcessTurn runs one conversation turn. References to files under the
// workspace are loaded and merged into the user message. The reply may be an
// "Error:" string when the backend failed; it is appended to the history
// either way. Without an active provider it returns ErrNoProvider and leaves
// the history untouched.
func (s *Session) ProcessTurn(ctx context.Context, input string) (string, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	provider := s.activeProvider()
	if provider == nil {
		return "", llm.ErrNoProvider
	}

	files, cleaned := s.workspace.Resolve(input)
	var blocks []workspace.Block
	if len(files) > 0 {
		s.observer.FilesLoading(files)
		blocks = s.workspace.LoadFiles(files)
	}

	return s.runTurn(ctx, provider, blocks, cleaned), nil
}

// ProcessDirectoryTurn runs a turn whose context is a scan of the whole
// workspace, plus any explicit references not already covered by the scan.
// Files that fail to load during the scan are dropped silently.
func (s *Session) ProcessDirectoryTurn(ctx context.Context, input string) (string, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	provider := s.activeProvider()
	if provider == nil {
		return "", llm.ErrNoProvider
	}

	files, cleaned := s.workspace.Resolve(input)
	blocks := s.workspace.LoadDirectory(s.maxFiles)

	seen := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		seen[b.Label] = struct{}{}
	}
	var extra []string
	for _, f := range files {
		key, ok := workspace.CleanPath(f)
		if !ok {
			key = f
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		extra = append(extra, f)
	}

	labels := make([]string, 0, len(blocks)+len(extra))
	for _, b := range blocks {
		if !b.IsTruncation() {
			labels = append(labels, b.Label)
		}
	}
	labels = append(labels, extra...)
	s.observer.FilesLoading(labels)

	if len(extra) > 0 {
		blocks = append(blocks, s.workspace.LoadFiles(extra)...)
	}

	return s.runTurn(ctx, provider, blocks, cleaned), nil
}

// runTurn merges the blocks into the user message, appends it, asks the
// provider and appends the reply
func (s *Session) runTurn(ctx context.Context, provider llm.Provider, blocks []workspace.Block, cleaned string) string {
	message := s.buildMessage(provider, blocks, cleaned)

	s.mu.Lock()
	s.history = append(s.history, llm.NewUserMessage(message))
	history := llm.CloneHistory(s.history)
	s.mu.Unlock()

	s.observer.Generating(provider.Name())
	reply := provider.Generate(ctx, history, s.genOpts...)

	s.mu.Lock()
	s.history = append(s.history, llm.NewAssistantMessage(reply))
	s.mu.Unlock()

	if llm.IsErrorReply(reply) {
		s.logger.Warn("turn completed with a backend error",
			zap.String("provider", provider.Name()),
			zap.String("error", reply))
	}
	return reply
}

// buildMessage renders the loadable blocks and the cleaned text as one
// message. Error blocks are reported and left out.
func (s *Session) buildMessage(provider llm.Provider, blocks []workspace.Block, cleaned string) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch {
		case b.IsError():
			s.logger.Warn("file not included", zap.String("file", b.Label), zap.Error(b.Err))
			s.observer.FileWarning(b)
		case b.IsTruncation():
			parts = append(parts, b.Content)
		default:
			parts = append(parts, provider.FormatContextMessage(b.Content, b.Label))
		}
	}

	if len(parts) == 0 {
		return cleaned
	}
	return contextHeader + "\n\n" + strings.Join(parts, "\n\n") + "\n\n" + cleaned
}

// ClearHistory drops the whole conversation, keeping the provider
func (s *Session) ClearHistory() {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// History returns a copy of the conversation
func (s *Session) History() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return llm.CloneHistory(s.history)
}

// ProviderName returns the active backend, or "" when none is active
func (s *Session) ProviderName() string {
	if p := s.activeProvider(); p != nil {
		return p.Name()
	}
	return ""
}

// Model returns the active model, or "" when no provider is active
func (s *Session) Model() string {
	if p := s.activeProvider(); p != nil {
		return p.Model()
	}
	return ""
}

// ValidateConnection checks the active provider with a cheap backend call
func (s *Session) ValidateConnection(ctx context.Context) (bool, error) {
	p := s.activeProvider()
	if p == nil {
		return false, llm.ErrNoProvider
	}
	return p.ValidateConnection(ctx), nil
}

// ListSupportedFiles lists the workspace files that can be referenced
func (s *Session) ListSupportedFiles() []string {
	return s.workspace.ListSupportedFiles()
}

// AvailableProviders returns the registered backends that are usable
func (s *Session) AvailableProviders() []string {
	var names []string
	for _, name := range s.registry.Names() {
		if s.configs.IsUsable(name) {
			names = append(names, name)
		}
	}
	return names
}

func (s *Session) activeProvider() llm.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}
