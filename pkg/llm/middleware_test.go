package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// stubProvider replies with a fixed string
type stubProvider struct {
	Base
	reply string
	calls int
}

func (s *stubProvider) Generate(_ context.Context, _ []Message, _ ...GenerateOption) string {
	s.calls++
	return s.reply
}

func (s *stubProvider) ValidateConnection(context.Context) bool {
	return true
}

// recordingMiddleware appends its name to a shared trace
type recordingMiddleware struct {
	name  string
	trace *[]string
}

func (r *recordingMiddleware) Name() string { return r.name }

func (r *recordingMiddleware) BeforeGenerate(context.Context, Provider, []Message) {
	*r.trace = append(*r.trace, "before:"+r.name)
}

func (r *recordingMiddleware) AfterGenerate(_ context.Context, _ Provider, _ []Message, reply string, _ time.Duration) {
	*r.trace = append(*r.trace, "after:"+r.name+":"+reply)
}

func TestWithMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("order", func(t *testing.T) {
		t.Parallel()

		var trace []string
		inner := &stubProvider{Base: NewBase("stub", "m", 0), reply: "ok"}
		provider := WithMiddleware(inner,
			&recordingMiddleware{name: "a", trace: &trace},
			&recordingMiddleware{name: "b", trace: &trace},
		)

		reply := provider.Generate(context.Background(), []Message{NewUserMessage("hi")})

		assert.Equal(t, "ok", reply)
		assert.Equal(t, 1, inner.calls)
		assert.Equal(t, []string{"before:a", "before:b", "after:b:ok", "after:a:ok"}, trace)
		assert.Equal(t, "stub", provider.Name())
		assert.Equal(t, "m", provider.Model())
	})

	t.Run("no_middleware_returns_provider", func(t *testing.T) {
		t.Parallel()

		inner := &stubProvider{Base: NewBase("stub", "m", 0)}
		assert.Same(t, Provider(inner), WithMiddleware(inner))
	})

	t.Run("extends_existing_chain", func(t *testing.T) {
		t.Parallel()

		var trace []string
		inner := &stubProvider{Base: NewBase("stub", "m", 0), reply: "ok"}
		first := WithMiddleware(inner, &recordingMiddleware{name: "a", trace: &trace})
		second := WithMiddleware(first, &recordingMiddleware{name: "b", trace: &trace})

		require.Same(t, first, second)
		enhanced := second.(*EnhancedProvider)
		assert.Equal(t, []string{"a", "b"}, enhanced.GetMiddlewareNames())
		assert.Same(t, Provider(inner), enhanced.Unwrap())
	})
}

func TestMiddlewareChainRemove(t *testing.T) {
	t.Parallel()

	var trace []string
	chain := NewMiddlewareChain([]Middleware{
		&recordingMiddleware{name: "a", trace: &trace},
		&recordingMiddleware{name: "b", trace: &trace},
	})
	chain.AddMiddleware(nil)

	assert.True(t, chain.RemoveMiddleware("a"))
	assert.False(t, chain.RemoveMiddleware("missing"))
	assert.Equal(t, []string{"b"}, chain.GetMiddlewareNames())
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ok := WithMiddleware(&stubProvider{Base: NewBase("stub", "m", 0), reply: "fine"}, LoggingMiddleware(logger))
	ok.Generate(context.Background(), []Message{NewUserMessage("hi")})

	failing := WithMiddleware(&stubProvider{Base: NewBase("stub", "m", 0), reply: ErrorReply(errors.New("boom"))}, LoggingMiddleware(logger))
	failing.Generate(context.Background(), []Message{NewUserMessage("hi")})

	assert.Equal(t, 2, logs.FilterMessage("generate request").Len())
	assert.Equal(t, 1, logs.FilterMessage("generate response").Len())

	warnings := logs.FilterMessage("generate failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, "Error: boom", warnings[0].ContextMap()["error"])
	assert.Equal(t, "stub", warnings[0].ContextMap()["provider"])
}
