// Command rebe is a minimal CLI entrypoint for the knowledge engine. It
// wires pkg/host against a data directory and dispatches a single
// subcommand, standing in for the desktop shell / IPC dispatcher that
// spec.md treats as an external collaborator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/retrieval"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/pkg/host"
)

func main() {
	dataDir := flag.String("data-dir", "./rebe-data", "directory holding the SQLite store and device identity")
	apiKey := flag.String("anthropic-api-key", os.Getenv("ANTHROPIC_API_KEY"), "API key for the digest/extraction analyzer")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: rebe [-data-dir dir] <seed|stats|search|identity> [args...]")
		os.Exit(1)
	}

	h, err := host.New(host.Config{DataDir: *dataDir, AnthropicAPIKey: *apiKey})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[rebe] failed to open host: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	if err := dispatch(h, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "[rebe] %s failed: %v\n", args[0], err)
		os.Exit(1)
	}
}

func dispatch(h *host.Host, cmd string, rest []string) error {
	switch cmd {
	case "seed":
		count, err := h.SeedCEOPatterns()
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d items\n", count)
		return nil

	case "stats":
		stats, err := h.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("total=%d active=%d\n", stats.TotalItems, stats.ActiveItems)
		for _, sc := range stats.ByScope {
			fmt.Printf("  scope=%s count=%d\n", sc.Scope, sc.Count)
		}
		return nil

	case "search":
		if len(rest) < 1 {
			return fmt.Errorf("search requires a query string")
		}
		hits, err := h.HybridSearch(rest[0], retrieval.DefaultSearchParams())
		if err != nil {
			return err
		}
		for _, hit := range hits {
			fmt.Printf("%.3f  %s  %s\n", hit.HybridScore, hit.Item.KnowledgeType, hit.Item.Content)
		}
		return nil

	case "identity":
		id, err := h.Identity()
		if err != nil {
			return err
		}
		fmt.Println(id.DID())
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
