// Command quakectl runs the bulletin extractor and aggregator once, against
// the live PHIVOLCS page or a saved copy, and prints the result.
//
// Usage:
//
//	quakectl extract --file bulletin.html --limit 5
//	quakectl stats --format human
//	quakectl latest --url https://example.org/bulletin
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
