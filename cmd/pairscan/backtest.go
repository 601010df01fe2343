package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meanrev/pairscan/internal/backtest"
	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/storage/archive"
)

var (
	btEntry   float64
	btExit    float64
	btStop    float64
	btDynamic bool
	btTrades  bool
	btJSON    bool
	btArchive bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest SYMBOL1 SYMBOL2",
	Short: "Backtest a pair over the configured lookback window",
	Long: `Backtest simulates the mean-reversion strategy on one pair: the spread
is computed from an Engle-Granger regression (or a Kalman filter when dynamic
hedging is enabled) and traded on Z-score thresholds.`,
	Args: cobra.ExactArgs(2),
	RunE: runBacktestCmd,
}

func init() {
	backtestCmd.Flags().Float64Var(&btEntry, "entry", 0, "entry Z-score threshold (default from config)")
	backtestCmd.Flags().Float64Var(&btExit, "exit", -1, "exit Z-score threshold (default from config)")
	backtestCmd.Flags().Float64Var(&btStop, "stop", 0, "stop-loss Z-score threshold (default from config)")
	backtestCmd.Flags().BoolVar(&btDynamic, "dynamic-hedge", false, "use Kalman filter hedge ratio")
	backtestCmd.Flags().BoolVar(&btTrades, "trades", false, "print individual trades")
	backtestCmd.Flags().BoolVar(&btJSON, "json", false, "print the full result as JSON")
	backtestCmd.Flags().BoolVar(&btArchive, "archive", false, "save the result to the snapshot archive")
	rootCmd.AddCommand(backtestCmd)
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	symbol1, symbol2 := args[0], args[1]
	if symbol1 == symbol2 {
		return fmt.Errorf("cannot backtest %s against itself", symbol1)
	}

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

	btCfg := cfg.Backtest
	if cmd.Flags().Changed("entry") {
		btCfg.EntryThreshold = btEntry
	}
	if cmd.Flags().Changed("exit") {
		btCfg.ExitThreshold = btExit
	}
	if cmd.Flags().Changed("stop") {
		btCfg.StopLoss = btStop
	}
	if cmd.Flags().Changed("dynamic-hedge") {
		btCfg.UseDynamicHedge = btDynamic
	}
	if err := btCfg.Validate(); err != nil {
		return err
	}

	result, err := a.Backtest(cmd.Context(), symbol1, symbol2, btCfg)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if btArchive && a.Snapshots() != nil {
		key, aerr := a.Snapshots().Save(cmd.Context(), archive.KindBacktest, result)
		if aerr != nil {
			log.Warn("backtest snapshot not archived", zap.Error(aerr))
		} else {
			fmt.Fprintf(os.Stderr, "archived: %s\n", key)
		}
	}

	if btJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printBacktestReport(os.Stdout, symbol1, symbol2, btCfg.Interval, result, btTrades)
	return nil
}

func printBacktestReport(out io.Writer, symbol1, symbol2 string, iv core.Interval, result *backtest.Result, withTrades bool) {
	m := result.Metrics
	fmt.Fprintf(out, "Backtest %s/%s (%s bars, hedge ratio %.4f)\n\n",
		symbol1, symbol2, iv, result.HedgeRatio)
	fmt.Fprintf(out, "  Total return:      %+.2f%%\n", m.TotalReturn*100)
	fmt.Fprintf(out, "  Annualized return: %+.2f%%\n", m.AnnualizedReturn*100)
	fmt.Fprintf(out, "  Sharpe ratio:      %.2f\n", m.SharpeRatio)
	fmt.Fprintf(out, "  Sortino ratio:     %.2f\n", m.SortinoRatio)
	fmt.Fprintf(out, "  Max drawdown:      %.2f%%\n", m.MaxDrawdown*100)
	// WinRate is already a percentage; the other ratios are fractions.
	fmt.Fprintf(out, "  Win rate:          %.1f%%\n", m.WinRate)
	fmt.Fprintf(out, "  Profit factor:     %.2f\n", m.ProfitFactor)
	fmt.Fprintf(out, "  Trades:            %d (avg %.1f bars held)\n", m.TotalTrades, m.AvgHoldingBars)

	if withTrades && len(result.Trades) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SIDE\tBARS\tENTRY Z\tEXIT Z\tNET P&L\tREASON\t")
		fmt.Fprintln(w, "----\t----\t-------\t------\t-------\t------\t")
		for _, tr := range result.Trades {
			fmt.Fprintf(w, "%s\t%d\t%+.2f\t%+.2f\t%+.2f%%\t%s\t\n",
				tr.Side, tr.HoldingBars, tr.EntryZ, tr.ExitZ, tr.NetPnL*100, tr.ExitReason)
		}
		w.Flush()
	}
}
