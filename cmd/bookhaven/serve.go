package main

import (
	"context"
	"fmt"
	"time"

	bhhttp "github.com/fwojciec/bookhaven/http"
)

// shutdownTimeout bounds how long in-flight requests may take on shutdown.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := bhhttp.NewServer()
	s.Addr = c.Addr
	s.Catalog = deps.Catalog
	s.Books = deps.Books
	s.Orders = deps.Orders
	s.Recommender = deps.Recommender
	s.Recommendations = c.Top
	s.CORSOrigins = c.CORSOrigins
	s.Metrics = deps.Metrics
	s.Logger = deps.Logger

	if err := s.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to listen on %s: %v\n", c.Addr, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())

	<-deps.Ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: shutdown: %v\n", err)
		return err
	}
	fmt.Fprintln(deps.Stdout, "Server stopped")
	return nil
}
