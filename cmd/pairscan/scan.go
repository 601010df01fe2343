package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanTop  int
	scanJSON bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [symbols...]",
	Short: "Scan a symbol universe for cointegrated pairs",
	Long: `Scan evaluates every pair in the universe for cointegration and ranks
the candidates by composite score. Symbols default to the configured universe.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTop, "top", 20, "number of top pairs to print")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	symbols := args
	if len(symbols) == 0 {
		symbols = cfg.Symbols
	}
	if len(symbols) < 2 {
		return fmt.Errorf("need at least 2 symbols, got %d (set symbols in config or pass as arguments)", len(symbols))
	}

	result, err := a.Scan(cmd.Context(), symbols, func(completed, total int) {
		if !scanJSON && total > 0 && completed%50 == 0 {
			fmt.Fprintf(os.Stderr, "scanned %d/%d pairs\n", completed, total)
		}
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Scanned %d pairs in %s (%d evaluated, %d skipped)\n\n",
		result.PairsTotal, result.Elapsed.Round(time.Millisecond), result.PairsEvaluated, result.PairsSkipped)

	if len(result.Results) == 0 {
		fmt.Println("No tradeable pairs found.")
		return nil
	}

	top := result.Results
	if scanTop > 0 && len(top) > scanTop {
		top = top[:scanTop]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tSCORE\tCOINT\tP-VALUE\tCORR\tHEDGE\tHALF-LIFE\tZ\tSIGNAL\t")
	fmt.Fprintln(w, "----\t-----\t-----\t-------\t----\t-----\t---------\t-\t------\t")
	for _, r := range top {
		coint := "no"
		if r.IsCointegrated {
			coint = "yes"
		}
		fmt.Fprintf(w, "%s/%s\t%.1f\t%s\t%.3f\t%.2f\t%.3f\t%.1f\t%+.2f\t%s\t\n",
			r.Symbol1, r.Symbol2, r.Score, coint, r.PValue, r.Correlation,
			r.HedgeRatio, r.HalfLife, r.ZScore, r.Signal)
	}
	w.Flush()

	log.Info("scan finished",
		zap.Int("pairs_evaluated", result.PairsEvaluated),
		zap.Int("candidates", len(result.Results)))
	return nil
}
