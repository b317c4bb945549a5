package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inercia/llm-code/pkg/factory"
	"github.com/inercia/llm-code/pkg/llm"
	"github.com/inercia/llm-code/pkg/providers/mock"
	"github.com/inercia/llm-code/pkg/workspace"
)

// namedProvider gives a mock client its own backend identifier
type namedProvider struct {
	*mock.Client
	name string
}

func (p *namedProvider) Name() string {
	return p.name
}

type fakeConfigs map[string]llm.ProviderConfig

func (f fakeConfigs) Lookup(name string) (llm.ProviderConfig, bool) {
	cfg, ok := f[name]
	return cfg, ok
}

func (f fakeConfigs) IsUsable(name string) bool {
	cfg, ok := f[name]
	return ok && cfg.Usable()
}

type recordingObserver struct {
	mu         sync.Mutex
	loading    [][]string
	warnings   []workspace.Block
	generating []string
}

func (o *recordingObserver) FilesLoading(files []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = append(o.loading, files)
}

func (o *recordingObserver) FileWarning(block workspace.Block) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, block)
}

func (o *recordingObserver) Generating(provider string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generating = append(o.generating, provider)
}

type fixture struct {
	session  *Session
	alpha    *mock.Client
	beta     *mock.Client
	observer *recordingObserver
}

var testFiles = fstest.MapFS{
	"a.txt":       {Data: []byte("alpha")},
	"src/main.go": {Data: []byte("package main")},
	"img.png":     {Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
}

func newFixture(t *testing.T, fsys fstest.MapFS, opts ...Option) *fixture {
	t.Helper()

	alpha, err := mock.NewClient(llm.ProviderConfig{Model: "alpha-model"})
	require.NoError(t, err)
	beta, err := mock.NewClient(llm.ProviderConfig{Model: "beta-model"})
	require.NoError(t, err)

	registry := factory.NewRegistry()
	registry.Register("alpha", func(llm.ProviderConfig, *zap.Logger) (llm.Provider, error) {
		return &namedProvider{Client: alpha, name: "alpha"}, nil
	})
	registry.Register("beta", func(llm.ProviderConfig, *zap.Logger) (llm.Provider, error) {
		return &namedProvider{Client: beta, name: "beta"}, nil
	})
	registry.Register("nokey", func(llm.ProviderConfig, *zap.Logger) (llm.Provider, error) {
		return nil, errors.New("must not be called")
	})
	registry.Register("broken", func(llm.ProviderConfig, *zap.Logger) (llm.Provider, error) {
		return nil, errors.New("bad base URL")
	})

	configs := fakeConfigs{
		"alpha":  {APIKey: "a", Model: "alpha-model"},
		"beta":   {APIKey: "b", Model: "beta-model"},
		"nokey":  {Model: "m"},
		"broken": {APIKey: "x", Model: "m"},
	}

	observer := &recordingObserver{}
	opts = append([]Option{WithObserver(observer)}, opts...)
	s := NewSession(workspace.NewFS(fsys, "/work"), registry, configs, opts...)

	return &fixture{session: s, alpha: alpha, beta: beta, observer: observer}
}

func TestProcessTurnWithoutProvider(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testFiles)

	_, err := f.session.ProcessTurn(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrNoProvider)
	assert.Empty(t, f.session.History())
	assert.Equal(t, "", f.session.ProviderName())

	_, err = f.session.ProcessDirectoryTurn(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrNoProvider)

	_, err = f.session.ValidateConnection(context.Background())
	assert.ErrorIs(t, err, llm.ErrNoProvider)
}

func TestProcessTurn(t *testing.T) {
	t.Parallel()

	t.Run("file context is merged", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))
		f.alpha.AddReply("It says alpha.")

		reply, err := f.session.ProcessTurn(context.Background(), "@a.txt @missing.txt explain")
		require.NoError(t, err)
		assert.Equal(t, "It says alpha.", reply)

		history := f.session.History()
		require.Len(t, history, 2)
		assert.Equal(t, llm.RoleUser, history[0].Role)
		assert.Equal(t, "Here are the files for context:\n\nFile: a.txt\n\nalpha\n\nexplain", history[0].Content)
		assert.Equal(t, llm.NewAssistantMessage("It says alpha."), history[1])

		assert.Equal(t, [][]string{{"a.txt"}}, f.observer.loading)
		assert.Empty(t, f.observer.warnings)
		assert.Equal(t, []string{"alpha"}, f.observer.generating)

		last := f.alpha.GetLastCall()
		require.NotNil(t, last)
		assert.Equal(t, history[:1], last.History)
	})

	t.Run("plain text is only trimmed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))

		_, err := f.session.ProcessTurn(context.Background(), "  what is  this?  ")
		require.NoError(t, err)
		assert.Equal(t, "what is  this?", f.session.History()[0].Content)
		assert.Empty(t, f.observer.loading)
	})

	t.Run("raw references never reach the provider", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))

		_, err := f.session.ProcessTurn(context.Background(), "compare @src/main.go and @nothere.go")
		require.NoError(t, err)
		msg := f.session.History()[0].Content
		assert.NotContains(t, msg, "@")
		assert.True(t, strings.HasSuffix(msg, "\n\ncompare and"), msg)
	})

	t.Run("unreadable files are reported and skipped", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))

		_, err := f.session.ProcessTurn(context.Background(), "@img.png describe")
		require.NoError(t, err)

		assert.Equal(t, "describe", f.session.History()[0].Content)
		require.Len(t, f.observer.warnings, 1)
		assert.Equal(t, "img.png", f.observer.warnings[0].Label)
		assert.True(t, strings.HasPrefix(f.observer.warnings[0].Content, "Error:"))
	})

	t.Run("history is replayed on every turn", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))
		f.alpha.AddReply("one").AddReply("two")

		_, err := f.session.ProcessTurn(context.Background(), "first")
		require.NoError(t, err)
		_, err = f.session.ProcessTurn(context.Background(), "second")
		require.NoError(t, err)

		last := f.alpha.GetLastCall()
		require.NotNil(t, last)
		require.Len(t, last.History, 3)
		assert.Equal(t, "first", last.History[0].Content)
		assert.Equal(t, "one", last.History[1].Content)
		assert.Equal(t, "second", last.History[2].Content)
		assert.Len(t, f.session.History(), 4)
	})
}

func TestBackendFailureIsAppended(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testFiles)
	require.NoError(t, f.session.SwitchProvider("alpha"))
	f.alpha.AddError(errors.New("connection refused")).AddReply("back again")

	reply, err := f.session.ProcessTurn(context.Background(), "hello")
	require.NoError(t, err)
	assert.Regexp(t, `^Error:.*`, reply)

	history := f.session.History()
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
	assert.Equal(t, reply, history[1].Content)

	reply, err = f.session.ProcessTurn(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "back again", reply)
	assert.Len(t, f.session.History(), 4)
}

func TestSwitchProvider(t *testing.T) {
	t.Parallel()

	t.Run("switch clears history", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))
		_, err := f.session.ProcessTurn(context.Background(), "hello")
		require.NoError(t, err)
		require.Len(t, f.session.History(), 2)

		require.NoError(t, f.session.SwitchProvider("Beta"))
		assert.Empty(t, f.session.History())
		assert.Equal(t, "beta", f.session.ProviderName())
		assert.Equal(t, "beta-model", f.session.Model())

		_, err = f.session.ProcessTurn(context.Background(), "hello beta")
		require.NoError(t, err)
		assert.True(t, f.beta.AssertCallCount(1))
		assert.True(t, f.alpha.AssertCallCount(1))
	})

	failures := []struct {
		name    string
		target  string
		wantErr error
	}{
		{name: "unknown provider", target: "nonexistent", wantErr: llm.ErrUnknownProvider},
		{name: "missing key", target: "nokey", wantErr: llm.ErrProviderNotConfigured},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, testFiles)
			require.NoError(t, f.session.SwitchProvider("alpha"))
			_, err := f.session.ProcessTurn(context.Background(), "hello")
			require.NoError(t, err)

			err = f.session.SwitchProvider(tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "alpha", f.session.ProviderName())
			assert.Len(t, f.session.History(), 2)
		})
	}

	t.Run("constructor failure keeps state", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, testFiles)
		require.NoError(t, f.session.SwitchProvider("alpha"))
		_, err := f.session.ProcessTurn(context.Background(), "hello")
		require.NoError(t, err)

		err = f.session.SwitchProvider("broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad base URL")
		assert.Equal(t, "alpha", f.session.ProviderName())
		assert.Len(t, f.session.History(), 2)
	})
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testFiles)
	require.NoError(t, f.session.SwitchProvider("alpha"))
	_, err := f.session.ProcessTurn(context.Background(), "hello")
	require.NoError(t, err)

	f.session.ClearHistory()
	assert.Empty(t, f.session.History())
	assert.Equal(t, "alpha", f.session.ProviderName())
}

func TestProcessDirectoryTurn(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a.go":          {Data: []byte("package a")},
		"b.go":          {Data: []byte("package b")},
		"c.go":          {Data: []byte("package c")},
		"docs/notes.md": {Data: []byte("notes")},
		".git/HEAD":     {Data: []byte("ref: refs/heads/main")},
	}

	t.Run("truncated scan", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fsys, WithMaxFiles(2))
		require.NoError(t, f.session.SwitchProvider("alpha"))

		_, err := f.session.ProcessDirectoryTurn(context.Background(), "summarize")
		require.NoError(t, err)

		msg := f.session.History()[0].Content
		assert.Equal(t, "Here are the files for context:\n\n"+
			"File: a.go\n\npackage a\n\n"+
			"File: b.go\n\npackage b\n\n"+
			"... truncated (max 2 files)\n\n"+
			"summarize", msg)
		assert.Equal(t, [][]string{{"a.go", "b.go"}}, f.observer.loading)
	})

	t.Run("explicit references are added once", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fsys)
		require.NoError(t, f.session.SwitchProvider("alpha"))

		_, err := f.session.ProcessDirectoryTurn(context.Background(), "@a.go @.git/HEAD review")
		require.NoError(t, err)

		msg := f.session.History()[0].Content
		assert.Equal(t, 1, strings.Count(msg, "File: a.go"))
		assert.Contains(t, msg, "File: .git/HEAD")
		assert.Contains(t, msg, "File: docs/notes.md")
		assert.True(t, strings.HasSuffix(msg, "\n\nreview"))
	})

	t.Run("references are matched by cleaned path", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fsys)
		require.NoError(t, f.session.SwitchProvider("alpha"))

		_, err := f.session.ProcessDirectoryTurn(context.Background(), "@./a.go @docs//notes.md @.git/HEAD @./.git/HEAD check")
		require.NoError(t, err)

		msg := f.session.History()[0].Content
		assert.Equal(t, 1, strings.Count(msg, "package a"))
		assert.Equal(t, 1, strings.Count(msg, "File: docs/notes.md"))
		assert.Equal(t, 1, strings.Count(msg, "ref: refs/heads/main"))
		assert.Equal(t, [][]string{{"a.go", "b.go", "c.go", "docs/notes.md", ".git/HEAD"}}, f.observer.loading)
	})
}

func TestSequentialTurns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testFiles)
	require.NoError(t, f.session.SwitchProvider("alpha"))

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.session.ProcessTurn(context.Background(), fmt.Sprintf("turn %d", i))
			assert.NoError(t, err)
			_ = f.session.History()
		}(i)
	}
	wg.Wait()

	history := f.session.History()
	require.Len(t, history, 2*turns)
	for i, msg := range history {
		if i%2 == 0 {
			assert.Equal(t, llm.RoleUser, msg.Role)
		} else {
			assert.Equal(t, llm.RoleAssistant, msg.Role)
		}
	}
}

type countingMiddleware struct {
	mu     sync.Mutex
	before int
	after  int
}

func (m *countingMiddleware) Name() string { return "counting" }

func (m *countingMiddleware) BeforeGenerate(context.Context, llm.Provider, []llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.before++
}

func (m *countingMiddleware) AfterGenerate(context.Context, llm.Provider, []llm.Message, string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.after++
}

func TestSessionOptions(t *testing.T) {
	t.Parallel()

	mw := &countingMiddleware{}
	f := newFixture(t, testFiles,
		WithMiddleware(mw),
		WithGenerateOptions(llm.WithTemperature(0.1)),
		WithLogger(zap.NewNop()),
	)
	require.NoError(t, f.session.SwitchProvider("alpha"))

	_, err := f.session.ProcessTurn(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, 1, mw.before)
	assert.Equal(t, 1, mw.after)
	last := f.alpha.GetLastCall()
	require.NotNil(t, last)
	assert.InDelta(t, 0.1, last.Options.Temperature, 1e-6)

	ok, err := f.session.ValidateConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testFiles)
	assert.Equal(t, []string{"a.txt", "src/main.go"}, f.session.ListSupportedFiles())
	assert.Equal(t, []string{"alpha", "beta", "broken"}, f.session.AvailableProviders())

	require.NoError(t, f.session.SwitchProvider("alpha"))
	history := f.session.History()
	assert.Empty(t, history)

	_, err := f.session.ProcessTurn(context.Background(), "hello")
	require.NoError(t, err)
	history = f.session.History()
	history[0].Content = "mutated"
	assert.Equal(t, "hello", f.session.History()[0].Content)
}
