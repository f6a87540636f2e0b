package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/collab"
	"github.com/fwojciec/stackdoc/docsync"
	"github.com/fwojciec/stackdoc/fs"
	"github.com/fwojciec/stackdoc/gemini"
	"github.com/fwojciec/stackdoc/goquery"
	"github.com/fwojciec/stackdoc/htmltomarkdown"
	stackhttp "github.com/fwojciec/stackdoc/http"
	"github.com/fwojciec/stackdoc/ingest"
	"github.com/fwojciec/stackdoc/readability"
	"github.com/fwojciec/stackdoc/rod"
	stackslog "github.com/fwojciec/stackdoc/slog"
	"github.com/fwojciec/stackdoc/sqlite"
	"github.com/fwojciec/stackdoc/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor STACKDOC_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ProjectService  stackdoc.ProjectService
	DocumentService stackdoc.DocumentService

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("stackdoc"),
		kong.Description("Collect and edit documentation for the libraries in your stack"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Configuration(TOML, DefaultConfigPath),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'stackdoc --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = m.DBPath
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set STACKDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.ProjectService = sqlite.NewProjectService(m.DB)
	m.DocumentService = stackslog.NewLoggingDocumentService(sqlite.NewDocumentService(m.DB), deps.Logger)
	deps.Projects = m.ProjectService
	deps.Documents = m.DocumentService
	deps.Sessions = docsync.NewController(deps.Documents, deps.Logger)
	deps.Hub = collab.NewHub()

	// Wire command-specific dependencies based on command
	var client *genai.Client
	if cmd == "serve" || cmd == "add" || cmd == "parse" {
		client, err = m.geminiClient(ctx, cli, stderr, cmd == "parse")
		if err != nil {
			return err
		}
		if client != nil {
			deps.Parser = stackslog.NewLoggingInputParser(gemini.NewInputParser(client, cli.Model), deps.Logger)
		}
	}

	if cmd == "serve" || cmd == "add" {
		if err := m.wireExtraction(cli, client, deps, stderr); err != nil {
			return err
		}
	}

	if cmd == "export" {
		deps.Writer = fs.NewWriter(cli.Export.Dir)
	}

	return kongCtx.Run(deps)
}

// geminiClient connects to the Gemini API. Without an API key extraction
// still works with the fallback tree, so the key is only required when
// the command cannot run without the model.
func (m *Main) geminiClient(ctx context.Context, cli *CLI, stderr io.Writer, required bool) (*genai.Client, error) {
	if cli.GeminiAPIKey == "" {
		if required {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		fmt.Fprintln(stderr, "warning: GEMINI_API_KEY not set; documents will not be structured by the model")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cli.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

// wireExtraction builds the scrape and structure stack shared by serve and
// add.
func (m *Main) wireExtraction(cli *CLI, client *genai.Client, deps *Dependencies, stderr io.Writer) error {
	var distiller stackdoc.Distiller = trafilatura.NewDistiller()
	if cli.Distiller == "readability" {
		distiller = readability.NewDistiller()
	}

	var fetcher stackdoc.Fetcher = stackhttp.NewFetcher(stackhttp.WithTimeout(cli.Timeout))
	if cli.Browser {
		rodFetcher, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = &ingest.FallbackFetcher{
			Primary:   fetcher,
			Fallback:  rodFetcher,
			Distiller: distiller,
		}
	}
	m.closers = append(m.closers, fetcher)

	scraper := stackslog.NewLoggingScraper(&ingest.Scraper{
		Fetcher:     stackslog.NewLoggingFetcher(fetcher, deps.Logger),
		Distiller:   distiller,
		Converter:   htmltomarkdown.NewConverter(),
		MetaReader:  goquery.NewMetaReader(),
		RateLimiter: ingest.NewDomainLimiter(ingest.DefaultRequestsPerSecond),
		Retryable:   stackhttp.IsTemporary,
		RetryDelays: ingest.DefaultRetryDelays(),
	}, deps.Logger)

	extractor := &ingest.Extractor{
		Scraper: scraper,
		Timeout: cli.Timeout,
		Logger:  deps.Logger,
	}

	if client != nil {
		strategy, err := gemini.ParseStrategy(cli.Strategy)
		if err != nil {
			return err
		}
		extractor.Structurer = stackslog.NewLoggingStructurer(
			gemini.NewStructurer(client, gemini.WithModel(cli.Model), gemini.WithStrategy(strategy)),
			deps.Logger,
		)
	}

	if cli.TokenBudget > 0 {
		counter, err := gemini.NewTokenCounter(tokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		extractor.TokenCounter = counter
		extractor.TokenBudget = cli.TokenBudget
	}

	deps.Scraper = scraper
	deps.Extractor = stackslog.NewLoggingExtractor(extractor, deps.Logger)
	deps.Pipeline = &ingest.Pipeline{
		Projects:  deps.Projects,
		Documents: deps.Documents,
		Extractor: deps.Extractor,
	}
	return nil
}

// tokenizerModel is the model the local tokenizer knows how to count for.
const tokenizerModel = gemini.DefaultModel

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("STACKDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "stackdoc.db"
	}
	dir := filepath.Join(home, ".stackdoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "stackdoc.db")
}
