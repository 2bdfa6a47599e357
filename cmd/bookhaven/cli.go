package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/bookhaven"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	Books       bookhaven.BookService
	Orders      bookhaven.OrderService
	Scraper     bookhaven.Scraper
	Catalog     bookhaven.Catalog
	Recommender bookhaven.Recommender
	Metrics     http.Handler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"BOOKHAVEN_DB" help:"SQLite database path"`
	BaseURL string `name:"base-url" env:"BOOKHAVEN_BASE_URL" default:"http://books.toscrape.com" help:"Bookstore to scrape"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Serve     ServeCmd     `cmd:"" help:"Serve the web UI and JSON API"`
	Scrape    ScrapeCmd    `cmd:"" help:"Scrape the catalog and store it"`
	Recommend RecommendCmd `cmd:"" help:"Recommend books similar to a stored title"`
	Stats     StatsCmd     `cmd:"" help:"Show rating statistics for the stored catalog"`
	Orders    OrdersCmd    `cmd:"" help:"List stored orders"`
	Export    ExportCmd    `cmd:"" help:"Export the stored catalog as Markdown"`
}

// ScrapeFlags configures how the catalog is read.
type ScrapeFlags struct {
	Pages   int           `short:"n" env:"BOOKHAVEN_PAGES" default:"2" help:"Catalog pages to scrape"`
	Details bool          `help:"Fetch product pages for descriptions"`
	Render  bool          `help:"Fetch pages with headless Chrome"`
	Timeout time.Duration `default:"10s" help:"Per-page fetch timeout"`
}

// Options returns the scrape options selected by the flags.
func (f ScrapeFlags) Options() bookhaven.ScrapeOptions {
	return bookhaven.ScrapeOptions{Pages: f.Pages, Details: f.Details}
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	ScrapeFlags `embed:""`

	Addr        string        `env:"BOOKHAVEN_ADDR" default:":8080" help:"Listen address"`
	CacheTTL    time.Duration `name:"cache-ttl" env:"BOOKHAVEN_CACHE_TTL" default:"10m" help:"How long a scrape is reused"`
	CORSOrigins []string      `name:"cors-origins" env:"BOOKHAVEN_CORS_ORIGINS" help:"Origins allowed to call /api"`
	Top         int           `default:"5" help:"Recommendations per book"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	ScrapeFlags `embed:""`

	Replace bool `help:"Delete stored books before saving the new catalog"`
}

// RecommendCmd is the "recommend" subcommand.
type RecommendCmd struct {
	Title string `arg:"" help:"Book title"`
	Top   int    `short:"t" default:"5" help:"Number of recommendations"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// OrdersCmd is the "orders" subcommand.
type OrdersCmd struct {
	Email string `help:"Only orders placed with this email"`
	Limit int    `default:"20" help:"Maximum orders to list"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir string `arg:"" help:"Output directory"`
}
