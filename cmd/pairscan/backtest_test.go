package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/meanrev/pairscan/internal/backtest"
	"github.com/meanrev/pairscan/internal/core"
)

func TestPrintBacktestReport_WinRateIsAlreadyPercent(t *testing.T) {
	result := &backtest.Result{
		HedgeRatio: 1.25,
		Metrics: backtest.Metrics{
			TotalReturn: 0.08,
			WinRate:     60,
			TotalTrades: 5,
		},
	}

	var buf bytes.Buffer
	printBacktestReport(&buf, "AAAUSDT", "BBBUSDT", core.Interval15m, result, false)

	out := buf.String()
	if !strings.Contains(out, "Win rate:          60.0%") {
		t.Errorf("want win rate printed as 60.0%%, got:\n%s", out)
	}
	if !strings.Contains(out, "Total return:      +8.00%") {
		t.Errorf("want total return printed as +8.00%%, got:\n%s", out)
	}
}

func TestPrintBacktestReport_TradesTable(t *testing.T) {
	result := &backtest.Result{
		Trades: []backtest.Trade{
			{Side: backtest.SideLongSpread, HoldingBars: 7, EntryZ: -2.1, ExitZ: 0.1, NetPnL: 0.012, ExitReason: backtest.ExitMeanReversion},
		},
	}

	var buf bytes.Buffer
	printBacktestReport(&buf, "AAAUSDT", "BBBUSDT", core.Interval1h, result, true)

	if !strings.Contains(buf.String(), "mean_reversion") {
		t.Errorf("want trade row in report, got:\n%s", buf.String())
	}
}
