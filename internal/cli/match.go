package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bersy123e/offerdoffer/internal/config"
	"github.com/Bersy123e/offerdoffer/internal/pipeline"
)

var (
	outJSON        string
	topN           int
	matchTimeout   time.Duration
	noCache        bool
	assistEnabled  bool
	assistProvider string
	assistModel    string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match <pricelist> <request>",
	Short: "Match a client request against a supplier price list",
	Long: `Match ingests the price list, interprets the free-text request and
prints ranked candidate positions with per-attribute score breakdowns.

A request may contain several positions (separate lines or "---"); each
is matched independently. Quantities like "10 шт" are recognized and
carried through to the output.

Example:
  offerdoffer match price.xlsx "фланец 25 мм сталь 20"
  offerdoffer match price.xlsx "отводы 90 гр 108х6 — 5 шт" --top 5
  offerdoffer match price.xlsx "переход на 57" --assist --assist-provider openai`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	// Output flags
	matchCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	matchCmd.Flags().IntVar(&topN, "top", 10, "max candidates to show per position")

	matchCmd.Flags().DurationVar(&matchTimeout, "timeout", 2*time.Minute, "overall matching timeout")
	matchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache")

	// Assist flags
	matchCmd.Flags().BoolVar(&assistEnabled, "assist", false, "enable natural-language assist for low-confidence queries")
	matchCmd.Flags().StringVar(&assistProvider, "assist-provider", "openai", "assist provider (openai, anthropic, ollama)")
	matchCmd.Flags().StringVar(&assistModel, "assist-model", "", "assist model name (provider default if empty)")
	matchCmd.Flags().IntVar(&headerRow, "header-row", -1, "1-based price list header row (default: auto-detect)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Cache.Enabled = !noCache

	// Configure assist if enabled
	if assistEnabled {
		cfg.Assist.Provider = assistProvider
		if assistModel != "" {
			cfg.Assist.Model = assistModel
		}

		// Get API key from environment
		switch assistProvider {
		case "openai":
			cfg.Assist.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.Assist.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.Assist.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.Assist.APIKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			baseURL := os.Getenv("OLLAMA_BASE_URL")
			if baseURL != "" {
				cfg.Assist.BaseURL = baseURL
			}
		}
	} else {
		cfg.Assist.Provider = ""
	}

	log := config.SetupLogger(cfg.Log)

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}

	rows, err := loadPriceList(args[0])
	if err != nil {
		return err
	}
	stats, err := p.Ingest(rows)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Ingested %d positions (%d unparsable)\n\n", stats.Total, stats.Unparsable)
	}

	items := p.Interpreter().Split(ctx, args[1])

	var responses []*pipeline.Response
	for _, item := range items {
		resp, err := p.Process(ctx, item.ItemQuery)
		if err != nil {
			return fmt.Errorf("match %q: %w", item.ItemQuery, err)
		}
		if resp.Query.Quantity == nil {
			resp.Query.Quantity = item.Quantity
		}
		responses = append(responses, resp)
		printResponse(p, resp)
	}

	if outJSON != "" {
		data, err := json.MarshalIndent(responses, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outJSON, err)
		}
		fmt.Printf("Results written to %s\n", outJSON)
	}
	return nil
}

func printResponse(p *pipeline.Pipeline, resp *pipeline.Response) {
	q := resp.Query

	fmt.Printf("Request: %s\n", q.RawText)
	if q.Unparsable() {
		fmt.Printf("  (не распознан тип изделия — позиция пропущена)\n\n")
		return
	}
	fmt.Printf("Parsed:  %s", q.Attrs.CanonicalText())
	if q.Quantity != nil {
		fmt.Printf("  × %d шт", *q.Quantity)
	}
	if q.Degraded {
		fmt.Printf("  [assist unavailable]")
	} else if q.AssistUsed {
		fmt.Printf("  [assist]")
	}
	if resp.FromCache {
		fmt.Printf("  [cached]")
	}
	fmt.Println()

	if len(resp.Results) == 0 {
		fmt.Printf("  Подходящих позиций не найдено.\n\n")
		return
	}

	snap := p.Store().Snapshot()
	shown := resp.Results
	if topN > 0 && len(shown) > topN {
		shown = shown[:topN]
	}
	for i, r := range shown {
		entry, ok := snap.Entry(r.EntryID)
		if !ok {
			continue
		}
		fmt.Printf("  %2d. [%.2f] %s", i+1, r.Score, entry.RawText)
		if entry.Price > 0 {
			fmt.Printf("  — %.2f руб", entry.Price)
		}
		if entry.Supplier != "" {
			fmt.Printf(" (%s)", entry.Supplier)
		}
		fmt.Println()
		if verbose {
			for _, am := range r.Breakdown {
				fmt.Printf("        %-14s %-10s %.2f  %q vs %q\n",
					am.Kind, am.Status, am.Score, am.QueryValue, am.EntryValue)
			}
		}
	}
	fmt.Println()
}
