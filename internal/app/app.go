package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/restyle/internal/budget"
	"github.com/hyperifyio/restyle/internal/cache"
	"github.com/hyperifyio/restyle/internal/docx"
	"github.com/hyperifyio/restyle/internal/extract"
	"github.com/hyperifyio/restyle/internal/llm"
	"github.com/hyperifyio/restyle/internal/prompt"
	"github.com/hyperifyio/restyle/internal/render"
	"github.com/hyperifyio/restyle/internal/template"
	"github.com/hyperifyio/restyle/internal/transform"
)

var (
	// ErrNoSelection is returned when a transformation is requested without a
	// selected template.
	ErrNoSelection = errors.New("no template selected")
	// ErrEmptyInput is returned for blank input text.
	ErrEmptyInput = errors.New("input text is empty")
)

// reservedOutputTokens is kept free for the answer when sizing prompts.
const reservedOutputTokens = 8192

// App is the controller: it owns one session, the extractor and the
// transformation client.
type App struct {
	cfg         Config
	session     *template.Session
	extractor   extract.Extractor
	transformer *transform.Client
	metrics     *Metrics
	// copyText writes to the system clipboard; replaced in tests
	copyText func(string) error
}

// Output is one displayed transformation result. Text is the sanitized model
// answer; Markup records which render path applies to it.
type Output struct {
	Template string `json:"template"`
	Text     string `json:"text"`
	Markup   bool   `json:"markup"`
	HTML     string `json:"html"`
}

// New builds an App talking to the OpenAI-compatible endpoint from cfg.
func New(ctx context.Context, cfg Config) (*App, error) {
	provider := llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, newLLMHTTPClient())
	gen := &llm.ChatGenerator{
		Client:       provider,
		Model:        cfg.LLMModel,
		SystemPrompt: cfg.SystemPrompt,
		Temperature:  float32(cfg.Temperature),
	}
	a, err := NewWithGenerator(cfg, gen)
	if err != nil {
		return nil, err
	}

	preflight(ctx, provider)
	return a, nil
}

// preflight is a quick connectivity check by listing models. It is
// best-effort: a failure here surfaces later as a TransformError. It returns
// the number of models seen, or -1 when the check could not run.
func preflight(ctx context.Context, c llm.Client) int {
	lister, ok := c.(llm.ModelLister)
	if !ok {
		return -1
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(pctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return -1
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
	return len(models.Models)
}

// NewWithGenerator builds an App around an arbitrary generator.
func NewWithGenerator(cfg Config, gen llm.Generator) (*App, error) {
	styles := docx.DefaultStyleMap()
	if strings.TrimSpace(cfg.StyleMapPath) != "" {
		m, err := docx.LoadStyleMapFile(cfg.StyleMapPath)
		if err != nil {
			return nil, fmt.Errorf("load style map: %w", err)
		}
		styles = m
		log.Info().Str("file", cfg.StyleMapPath).Int("rules", len(m)).Msg("custom style map loaded")
	}

	tc := &transform.Client{Generator: gen, Timeout: cfg.LLMTimeout, Model: cfg.LLMModel}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// ignored errors keep startup going
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		tc.Cache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	return &App{
		cfg:         cfg,
		session:     template.NewSession(),
		extractor:   extract.NewExtractor(styles),
		transformer: tc,
		metrics:     NewMetrics(),
		copyText:    clipboard.WriteAll,
	}, nil
}

// Session returns the session owned by the App.
func (a *App) Session() *template.Session { return a.session }

// Metrics returns the App's collectors.
func (a *App) Metrics() *Metrics { return a.metrics }

func (a *App) Close() {
	// nothing yet
}

// Upload extracts a template from an uploaded file, appends it to the
// session and selects it. Nothing is added when extraction fails.
func (a *App) Upload(ctx context.Context, name, mediaType string, data []byte) (template.Template, error) {
	doc, err := a.extractor.Extract(ctx, extract.Upload{Name: name, MediaType: mediaType, Data: data})
	if err != nil {
		var invalid *extract.InvalidFileError
		outcome := "parse_error"
		if errors.As(err, &invalid) {
			outcome = "invalid_type"
		}
		a.metrics.Uploads.WithLabelValues("unknown", outcome).Inc()
		log.Warn().Err(err).Str("name", name).Msg("upload rejected")
		return template.Template{}, err
	}
	t := template.New(name, doc.Text, doc.Markup)
	if err := a.session.AddAndSelect(t); err != nil {
		a.metrics.Uploads.WithLabelValues(string(doc.Format), "conflict").Inc()
		return template.Template{}, err
	}
	a.metrics.Uploads.WithLabelValues(string(doc.Format), "ok").Inc()
	a.metrics.Templates.Set(float64(len(a.session.List())))
	log.Info().Str("template", name).Str("id", t.ID).Str("format", string(doc.Format)).Int("bytes", len(data)).Bool("markup", t.HasMarkup()).Msg("template added")
	return t, nil
}

// Remove deletes a template; removing an unknown id is a no-op.
func (a *App) Remove(id string) {
	a.session.Remove(id)
	a.metrics.Templates.Set(float64(len(a.session.List())))
}

// Transform restyles input with the selected template. On failure the
// previous output is the caller's to keep; no placeholder text is returned.
func (a *App) Transform(ctx context.Context, input string) (Output, error) {
	t, ok := a.session.Selected()
	if !ok {
		return Output{}, ErrNoSelection
	}
	if strings.TrimSpace(input) == "" {
		return Output{}, ErrEmptyInput
	}
	mode := render.ModeFor(t.HasMarkup())
	modeLabel := "plain"
	if mode == render.ModeMarkup {
		modeLabel = "markup"
	}

	p := prompt.Build(t, input)
	est := budget.EstimateTokens(a.cfg.SystemPrompt, p)
	if !budget.FitsInContext(a.cfg.LLMModel, reservedOutputTokens, est) {
		log.Warn().Int("estTokens", est).Int("context", budget.ModelContextTokens(a.cfg.LLMModel)).Msg("prompt may exceed the model context window")
	}
	a.metrics.InFlight.Inc()
	start := time.Now()
	res, err := a.transformer.Transform(ctx, p)
	a.metrics.InFlight.Dec()
	if err != nil {
		if errors.Is(err, transform.ErrBusy) {
			a.metrics.Transforms.WithLabelValues(modeLabel, "busy").Inc()
			return Output{}, err
		}
		a.metrics.Latency.Observe(time.Since(start).Seconds())
		a.metrics.Transforms.WithLabelValues(modeLabel, "error").Inc()
		log.Error().Err(err).Str("template", t.Name).Msg("transformation failed")
		return Output{}, err
	}
	a.metrics.Latency.Observe(time.Since(start).Seconds())
	a.metrics.Transforms.WithLabelValues(modeLabel, "ok").Inc()
	log.Info().Str("template", t.Name).Str("mode", modeLabel).Dur("took", time.Since(start)).Msg("transformation complete")

	return Output{
		Template: t.Name,
		Text:     res.Text,
		Markup:   t.HasMarkup(),
		HTML:     render.Fragment(res.Text, mode, a.cfg.TrustMarkup),
	}, nil
}

// Run performs the one-shot CLI flow: upload the template file, read the
// input, transform it and write or display the result.
func (a *App) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if strings.TrimSpace(a.cfg.TemplatePath) == "" {
		return errors.New("no template file given")
	}
	data, err := os.ReadFile(a.cfg.TemplatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if _, err := a.Upload(ctx, filepath.Base(a.cfg.TemplatePath), "", data); err != nil {
		return err
	}

	var input []byte
	if a.cfg.InputPath == "" || a.cfg.InputPath == "-" {
		input, err = io.ReadAll(stdin)
	} else {
		input, err = os.ReadFile(a.cfg.InputPath)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	out, err := a.Transform(ctx, string(input))
	if err != nil {
		return err
	}
	mode := render.ModeFor(out.Markup)

	if a.cfg.OutputPath != "" {
		if err := os.WriteFile(a.cfg.OutputPath, []byte(out.Text), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPath).Msg("wrote output")
	} else {
		fmt.Fprintln(stdout, render.Terminal(out.Template, out.Text, mode, 0))
	}
	if a.cfg.OutputHTMLPath != "" {
		if err := os.WriteFile(a.cfg.OutputHTMLPath, []byte(out.HTML), 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputHTMLPath).Msg("wrote html fragment")
	}
	if a.cfg.OutputPDFPath != "" {
		if err := render.WritePDF(out.Text, mode, a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPDFPath).Msg("wrote pdf")
	}
	if a.cfg.Copy {
		// clipboard access depends on the desktop session; never fatal
		if err := a.copyText(render.PlainText(out.Text, mode)); err != nil {
			log.Warn().Err(err).Msg("copy to clipboard failed")
		} else {
			log.Info().Msg("output copied to clipboard")
		}
	}
	return nil
}
