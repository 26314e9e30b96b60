package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/restyle/internal/app"
)

// Exit code policy: 0 success, 1 usage or configuration error, 2 extraction
// or transformation failure.
const (
	exitOK     = 0
	exitConfig = 1
	exitFailed = 2
)

// usageError marks failures that happen before any work starts.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// options are the parsed command line beyond Config.
type options struct {
	serve   bool
	version bool
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, opts, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(exitConfig)
	}
	if opts.version {
		v := app.Version()
		fmt.Printf("restyle %s (commit %s, built %s)\n", v.Version, v.Commit, v.Date)
		os.Exit(exitOK)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, opts, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var uerr *usageError
	if errors.As(err, &uerr) {
		return exitConfig
	}
	return exitFailed
}

func run(ctx context.Context, cfg app.Config, opts options, stdin io.Reader, stdout io.Writer) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return &usageError{fmt.Errorf("init app: %w", err)}
	}
	defer a.Close()

	if opts.serve {
		return a.Serve(ctx)
	}
	if strings.TrimSpace(cfg.TemplatePath) == "" {
		return &usageError{errors.New("-template is required unless -serve is given")}
	}
	return a.Run(ctx, stdin, stdout)
}

// parseConfig layers configuration with flags > env > file > defaults.
func parseConfig(args []string, errOut io.Writer) (app.Config, options, error) {
	fs := flag.NewFlagSet("restyle", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var (
		opts             options
		templatePath     string
		inputPath        string
		outputPath       string
		outputHTML       string
		outputPDF        string
		copyOut          bool
		serveAddr        string
		llmBaseURL       string
		llmModel         string
		llmKey           string
		llmTimeout       time.Duration
		temperature      float64
		systemPrompt     string
		systemPromptFile string
		styleMap         string
		cacheDir         string
		cacheMaxAge      time.Duration
		cacheClear       bool
		cacheStrict      bool
		configPath       string
		envFiles         string
		maxUpload        int64
		verbose          bool
	)

	fs.StringVar(&templatePath, "template", "", "Template file (.txt or .docx) to restyle the input with")
	fs.StringVar(&inputPath, "input", "-", "Input text file; '-' reads stdin")
	fs.StringVar(&outputPath, "output", "", "Write the transformed text here instead of printing it")
	fs.StringVar(&outputHTML, "output.html", "", "Also write the rendered HTML fragment to this path")
	fs.StringVar(&outputPDF, "output.pdf", "", "Also write the result as a PDF to this path")
	fs.BoolVar(&copyOut, "copy", false, "Copy the transformed text to the system clipboard")
	fs.StringVar(&serveAddr, "serve", "", "Run the HTTP server on this address (e.g. :8080) instead of a one-shot run")
	fs.StringVar(&llmBaseURL, "llm.base", app.DefaultLLMBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&llmModel, "llm.model", app.DefaultLLMModel, "Model name")
	fs.StringVar(&llmKey, "llm.key", "", "API key for the model endpoint (or LLM_API_KEY / GEMINI_API_KEY)")
	fs.DurationVar(&llmTimeout, "llm.timeout", app.DefaultLLMTimeout, "Maximum time to wait for the model; 0 disables")
	fs.Float64Var(&temperature, "llm.temperature", app.DefaultTemperature, "Sampling temperature")
	fs.StringVar(&systemPrompt, "system.prompt", "", "Override the system prompt (inline string)")
	fs.StringVar(&systemPromptFile, "system.promptFile", "", "Path to a file containing the system prompt")
	fs.StringVar(&styleMap, "stylemap", "", "Style map file (arrow syntax or .yaml) replacing the built-in rules")
	fs.StringVar(&cacheDir, "cache.dir", "", "Response cache directory; empty disables caching")
	fs.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.StringVar(&configPath, "config", "", "YAML or JSON config file")
	fs.StringVar(&envFiles, "env", "", "Comma-separated dotenv files loaded after .env")
	fs.Int64Var(&maxUpload, "max.upload", app.DefaultMaxUpload, "Maximum upload size in bytes")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, opts, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	paths := []string{".env"}
	for _, p := range strings.Split(envFiles, ",") {
		if s := strings.TrimSpace(p); s != "" {
			paths = append(paths, s)
		}
	}
	if err := app.LoadEnvFiles(paths...); err != nil {
		return app.Config{}, opts, fmt.Errorf("load env: %w", err)
	}

	cfg := app.DefaultConfig()
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, opts, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return app.Config{}, opts, err
		}
	}
	app.ApplyEnvOverrides(&cfg)

	if set["template"] {
		cfg.TemplatePath = templatePath
	}
	if set["input"] || cfg.InputPath == "" {
		cfg.InputPath = inputPath
	}
	if set["output"] {
		cfg.OutputPath = outputPath
	}
	if set["output.html"] {
		cfg.OutputHTMLPath = outputHTML
	}
	if set["output.pdf"] {
		cfg.OutputPDFPath = outputPDF
	}
	if set["copy"] {
		cfg.Copy = copyOut
	}
	if set["serve"] {
		opts.serve = true
		if strings.TrimSpace(serveAddr) != "" {
			cfg.ListenAddr = serveAddr
		}
	}
	if set["llm.base"] {
		cfg.LLMBaseURL = llmBaseURL
	}
	if set["llm.model"] {
		cfg.LLMModel = llmModel
	}
	if set["llm.key"] {
		cfg.LLMAPIKey = llmKey
	}
	if set["llm.timeout"] {
		cfg.LLMTimeout = llmTimeout
	}
	if set["llm.temperature"] {
		cfg.Temperature = temperature
	}
	if set["system.prompt"] {
		cfg.SystemPrompt = systemPrompt
	}
	// a prompt file takes precedence over the inline string
	if strings.TrimSpace(systemPromptFile) != "" {
		b, err := os.ReadFile(systemPromptFile)
		if err != nil {
			return app.Config{}, opts, fmt.Errorf("read system prompt file: %w", err)
		}
		cfg.SystemPrompt = string(b)
	}
	if set["stylemap"] {
		cfg.StyleMapPath = styleMap
	}
	if set["cache.dir"] {
		cfg.CacheDir = cacheDir
	}
	if set["cache.maxAge"] {
		cfg.CacheMaxAge = cacheMaxAge
	}
	if set["cache.clear"] {
		cfg.CacheClear = cacheClear
	}
	if set["cache.strictPerms"] {
		cfg.CacheStrictPerms = cacheStrict
	}
	if set["max.upload"] {
		cfg.MaxUploadBytes = maxUpload
	}
	if set["v"] {
		cfg.Verbose = verbose
	}

	if opts.version {
		return cfg, opts, nil
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, opts, err
	}
	return cfg, opts, nil
}
