package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bersy123e/offerdoffer/internal/catalog"
	"github.com/Bersy123e/offerdoffer/internal/config"
	"github.com/Bersy123e/offerdoffer/internal/model"
	"github.com/Bersy123e/offerdoffer/internal/pipeline"
	"github.com/Bersy123e/offerdoffer/internal/pricelist"
)

var (
	headerRow  int
	ingestJSON string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <pricelist>",
	Short: "Parse a supplier price list and report extracted attributes",
	Long: `Ingest reads a supplier price list (.xlsx, .xls, .csv or .html),
detects the header row and column roles, derives structured attributes
for every position and prints ingestion statistics.

Use it to check how well a new supplier's naming parses before relying
on it for matching.

Example:
  offerdoffer ingest price.xlsx
  offerdoffer ingest price.csv --header-row 3 --json parsed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&headerRow, "header-row", -1, "1-based header row (default: auto-detect)")
	ingestCmd.Flags().StringVar(&ingestJSON, "json", "", "write parsed entries as JSON to this path")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
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

	fmt.Printf("Positions:  %d\n", stats.Total)
	fmt.Printf("Parsed:     %d\n", stats.Parsed)
	fmt.Printf("Unparsable: %d\n", stats.Unparsable)

	snap := p.Store().Snapshot()
	if verbose {
		for _, e := range snap.Entries {
			if e.Unparsable {
				fmt.Fprintf(os.Stderr, "✗ %s\n", e.RawText)
				continue
			}
			fmt.Fprintf(os.Stderr, "✓ %s → %s\n", e.RawText, e.Attrs.CanonicalText())
		}
	}

	if ingestJSON != "" {
		data, err := json.MarshalIndent(snap.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal entries: %w", err)
		}
		if err := os.WriteFile(ingestJSON, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", ingestJSON, err)
		}
		fmt.Printf("Entries written to %s\n", ingestJSON)
	}
	return nil
}

// loadConfig layers viper state (config file + OFFERDOFFER_* env) over the
// built-in defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	_ = viper.Unmarshal(cfg)
	if verbose && cfg.Log.Level == "info" {
		cfg.Log.Level = "debug"
	}
	return cfg
}

func loadPriceList(path string) ([]catalog.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price list: %w", err)
	}
	defer f.Close()

	rows, err := pricelist.ReadAny(f, path, headerRow)
	if err != nil {
		return nil, fmt.Errorf("read price list %s: %w", path, err)
	}
	return rows, nil
}
