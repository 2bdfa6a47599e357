package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/bookhaven"
	"github.com/fwojciec/bookhaven/goquery"
	"github.com/fwojciec/bookhaven/htmltomarkdown"
	bhhttp "github.com/fwojciec/bookhaven/http"
	"github.com/fwojciec/bookhaven/lru"
	bhprom "github.com/fwojciec/bookhaven/prometheus"
	"github.com/fwojciec/bookhaven/rod"
	"github.com/fwojciec/bookhaven/scrape"
	bhslog "github.com/fwojciec/bookhaven/slog"
	"github.com/fwojciec/bookhaven/sqlite"
	"github.com/fwojciec/bookhaven/tfidf"
	"github.com/joho/godotenv"
)

// requestsPerSecond bounds requests to the bookstore.
const requestsPerSecond = 2

// renderedSelector marks a listing or product page as rendered.
const renderedSelector = "article.product_pod, article.product_page"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Overridden by --db or BOOKHAVEN_DB.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Fetcher is the page fetcher used by scraping commands. When nil, one
	// is created from the command's flags.
	Fetcher bookhaven.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
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
		kong.Name("bookhaven"),
		kong.Description("Scrape books.toscrape.com, recommend titles, and take orders."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bookhaven --help' to see available commands")
	}
	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BOOKHAVEN_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	metrics := bhprom.NewMetrics()
	if err := metrics.RegisterDB("bookhaven", m.DB.SQL()); err != nil {
		return fmt.Errorf("failed to register database metrics: %w", err)
	}
	deps.Metrics = metrics.Handler()
	deps.Books = sqlite.NewBookService(m.DB)
	deps.Orders = bhslog.NewLoggingOrderService(
		bhprom.NewOrderService(sqlite.NewOrderService(m.DB), metrics),
		deps.Logger,
	)
	deps.Recommender = tfidf.NewRecommender()

	var flags *ScrapeFlags
	switch cmd {
	case "serve":
		flags = &cli.Serve.ScrapeFlags
	case "scrape":
		flags = &cli.Scrape.ScrapeFlags
	}
	if flags != nil {
		fetcher := m.Fetcher
		if fetcher == nil {
			fetcher, err = newFetcher(*flags)
			if err != nil {
				return err
			}
			defer fetcher.Close()
		}
		fetcher = bhslog.NewLoggingFetcher(bhprom.NewFetcher(fetcher, metrics), deps.Logger)

		sc := &scrape.Scraper{
			BaseURL:     cli.BaseURL,
			Fetcher:     fetcher,
			Parser:      goquery.NewCatalogParser(),
			Converter:   htmltomarkdown.NewConverter(),
			RateLimiter: scrape.NewDomainLimiter(requestsPerSecond),
			OnRetry: func(url string, attempt int, err error) {
				deps.Logger.Warn("retrying fetch", "url", url, "attempt", attempt, "error", err)
			},
		}
		if cmd == "scrape" {
			sc.Progress = progressPrinter(stderr)
		}
		var scraper bookhaven.Scraper = sc
		scraper = bhslog.NewLoggingScraper(bhprom.NewScraper(scraper, metrics), deps.Logger)
		if cmd == "serve" {
			scraper = lru.NewCachedScraper(scraper, cli.Serve.CacheTTL)
		}

		deps.Scraper = scraper
		deps.Catalog = &scrape.Catalog{
			Scraper: scraper,
			Store:   deps.Books,
			Options: flags.Options(),
			Logger:  deps.Logger,
		}
	}

	return kongCtx.Run(deps)
}

// progressPrinter reports listing page progress as "[n/total] url" lines.
func progressPrinter(w io.Writer) scrape.ProgressFunc {
	return func(e scrape.ProgressEvent) {
		switch {
		case e.Type == scrape.ProgressCompleted:
			fmt.Fprintf(w, "[%d/%d] %s\n", e.Completed, e.Total, e.URL)
		case e.Type == scrape.ProgressFailed && e.Total > 0:
			fmt.Fprintf(w, "[%d/%d] %s: %s\n", e.Completed, e.Total, e.URL, bookhaven.ErrorMessage(e.Error))
		}
	}
}

// newFetcher creates the HTTP fetcher, or a headless browser with --render.
func newFetcher(flags ScrapeFlags) (bookhaven.Fetcher, error) {
	if !flags.Render {
		return bhhttp.NewFetcher(bhhttp.WithTimeout(flags.Timeout)), nil
	}
	f, err := rod.NewFetcher(
		rod.WithFetchTimeout(flags.Timeout),
		rod.WithWaitSelector(renderedSelector),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
	}
	return f, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bookhaven.db"
	}
	dir := filepath.Join(home, ".bookhaven")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "bookhaven.db")
}
