package transform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/restyle/internal/cache"
	"github.com/hyperifyio/restyle/internal/llm"
)

func fixed(out string, err error) llm.Generator {
	return llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) { return out, err })
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```html\n<p>Hi</p>\n```", "\n<p>Hi</p>\n"},
		{"```\nplain\n```", "\nplain\n"},
		{"no fences here", "no fences here"},
		{"```html\n<pre>```go\nx\n```</pre>\n```", "\n<pre>```go\nx\n```</pre>\n"},
		{"```html\n<p>x</p>", "\n<p>x</p>"},
		{"<p>x</p>\n```", "<p>x</p>\n"},
		{"  ```html\n<p>x</p>\n```\n", "\n<p>x</p>\n"},
		{"```Hello world```", "Hello world"},
		{"```Hello\nworld\n```", "\nworld\n"},
		{"```go  \nx\n```", "\nx\n"},
		{"```", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripFences(tc.in), "input %q", tc.in)
	}
}

func TestStripFences_Idempotent(t *testing.T) {
	for _, in := range []string{
		"```html\n<p>Hi</p>\n```",
		"```\nchunk with ``` inside\n```",
		"plain text",
		"\n<p>Hi</p>\n",
	} {
		once := StripFences(in)
		assert.Equal(t, once, StripFences(once), "input %q", in)
	}

	// A fenced answer that itself starts and ends with a fence loses one
	// more layer on every pass; only the outermost pair is stripped per call.
	nested := "```\n```go\nx := 1\n```\n```"
	once := StripFences(nested)
	assert.Equal(t, "\n```go\nx := 1\n```\n", once)
	assert.Equal(t, "\nx := 1\n", StripFences(once))
}

func TestTransform_StripsFences(t *testing.T) {
	c := &Client{Generator: fixed("```html\n<p>Hi</p>\n```", nil)}
	res, err := c.Transform(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "\n<p>Hi</p>\n", res.Text)
	assert.False(t, c.Busy())
}

func TestTransform_UpstreamFailure(t *testing.T) {
	c := &Client{Generator: fixed("", errors.New("429 quota exceeded"))}
	_, err := c.Transform(context.Background(), "prompt")
	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Msg, "quota exceeded")
	assert.False(t, c.Busy(), "failure releases the in-flight slot")
}

func TestTransform_EmptyAnswerIsAnError(t *testing.T) {
	c := &Client{Generator: fixed("```html\n```", nil)}
	_, err := c.Transform(context.Background(), "prompt")
	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestTransform_Timeout(t *testing.T) {
	slow := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c := &Client{Generator: slow, Timeout: 20 * time.Millisecond}
	_, err := c.Transform(context.Background(), "prompt")
	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestTransform_SingleInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		close(started)
		<-release
		return "done", nil
	})
	c := &Client{Generator: gen}
	errc := make(chan error, 1)
	go func() {
		_, err := c.Transform(context.Background(), "first")
		errc <- err
	}()
	<-started
	require.True(t, c.Busy())
	_, err := c.Transform(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	close(release)
	require.NoError(t, <-errc)
	assert.False(t, c.Busy())
}

func TestTransform_CacheServesRepeats(t *testing.T) {
	calls := 0
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "<p>v</p>", nil
	})
	c := &Client{Generator: gen, Cache: &cache.LLMCache{Dir: t.TempDir()}, Model: "m"}
	for i := 0; i < 2; i++ {
		res, err := c.Transform(context.Background(), "same prompt")
		require.NoError(t, err)
		assert.Equal(t, "<p>v</p>", res.Text)
	}
	assert.Equal(t, 1, calls)
}

// scopedGen counts calls and reports a cache scope.
type scopedGen struct {
	scope string
	calls *int
}

func (g scopedGen) Generate(ctx context.Context, prompt string) (string, error) {
	*g.calls++
	return "<p>" + g.scope + "</p>", nil
}

func (g scopedGen) CacheScope() string { return g.scope }

func TestTransform_CacheKeyIncludesGeneratorScope(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	formal := &Client{Generator: scopedGen{scope: "formal", calls: &calls}, Cache: &cache.LLMCache{Dir: dir}, Model: "m"}
	pirate := &Client{Generator: scopedGen{scope: "pirate", calls: &calls}, Cache: &cache.LLMCache{Dir: dir}, Model: "m"}

	res, err := formal.Transform(context.Background(), "same prompt")
	require.NoError(t, err)
	assert.Equal(t, "<p>formal</p>", res.Text)

	res, err = pirate.Transform(context.Background(), "same prompt")
	require.NoError(t, err)
	assert.Equal(t, "<p>pirate</p>", res.Text)
	assert.Equal(t, 2, calls)

	res, err = formal.Transform(context.Background(), "same prompt")
	require.NoError(t, err)
	assert.Equal(t, "<p>formal</p>", res.Text)
	assert.Equal(t, 2, calls)
}

func TestTransform_Unconfigured(t *testing.T) {
	_, err := (&Client{}).Transform(context.Background(), "p")
	var te *TransformError
	require.True(t, errors.As(err, &te))
}
