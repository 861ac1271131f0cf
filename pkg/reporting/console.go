package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/agts/internal/config"
	"github.com/ducminhle1904/agts/pkg/types"
	"github.com/ducminhle1904/agts/pkg/validation"
)

// DefaultConsoleReporter renders tables to a writer
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return NewConsoleReporter(os.Stdout)
}

// NewConsoleReporter creates a console reporter writing to out
func NewConsoleReporter(out io.Writer) *DefaultConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &DefaultConsoleReporter{out: out}
}

// PrintConfig prints every group of the snapshot
func (r *DefaultConsoleReporter) PrintConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("AGTS CONFIGURATION")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Group", "Setting", "Value"})

	t.AppendRows([]table.Row{
		{"🗄️ Storage", "Credentials path", cfg.Database.FirebaseCredentialsPath},
		{"", "Collection", cfg.Database.FirestoreCollection},
		{"", "Realtime DB URL", optionalString(cfg.Database.RealtimeDBURL)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📊 Data", "Timeframe", cfg.Data.DefaultTimeframe},
		{"", "Lookback periods", humanize.Comma(int64(cfg.Data.LookbackPeriods))},
		{"", "Train / validation", fmt.Sprintf("%.0f%% / %.0f%%", cfg.Data.TrainTestSplit*100, cfg.Data.ValidationSplit*100)},
		{"", "Symbols", strings.Join(cfg.Data.Symbols, ", ")},
		{"", "Sources", strings.Join(cfg.Data.DataSources, ", ")},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🧬 Strategy", "Max indicators", cfg.Strategy.MaxIndicatorsPerStrategy},
		{"", "Max rules", cfg.Strategy.MaxRulesPerStrategy},
		{"", "Min confidence", cfg.Strategy.MinConfidenceThreshold},
		{"", "Population / elite", fmt.Sprintf("%d / %d", cfg.Strategy.PopulationSize, cfg.Strategy.EliteSize)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"💰 Backtest", "Initial capital", "$" + humanize.CommafWithDigits(cfg.Backtest.InitialCapital, 2)},
		{"", "Commission", fmt.Sprintf("%.3f%%", cfg.Backtest.Commission*100)},
		{"", "Slippage", fmt.Sprintf("%.3f%%", cfg.Backtest.Slippage*100)},
		{"", "Risk-free rate", fmt.Sprintf("%.2f%%", cfg.Backtest.RiskFreeRate*100)},
		{"", "Max drawdown", fmt.Sprintf("%.1f%%", cfg.Backtest.MaxDrawdownLimit*100)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🤖 RL", "Learning rate", cfg.RL.LearningRate},
		{"", "Discount factor", cfg.RL.DiscountFactor},
		{"", "Batch / memory", fmt.Sprintf("%d / %s", cfg.RL.BatchSize, humanize.Comma(int64(cfg.RL.MemorySize)))},
		{"", "Exploration", fmt.Sprintf("%.2f (decay %.3f)", cfg.RL.ExplorationRate, cfg.RL.ExplorationDecay)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📝 Logging", "Level", cfg.Logging.LogLevel},
		{"", "File", cfg.Logging.LogFile},
		{"", "Rotation", fmt.Sprintf("%s x %d", cfg.Logging.MaxFileSize, cfg.Logging.BackupCount)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 12, Align: text.AlignLeft},
		{Number: 2, WidthMin: 18, Align: text.AlignLeft},
		{Number: 3, WidthMin: 20, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// PrintSeriesSummary prints one row per series. splits is keyed by symbol
// and may be nil.
func (r *DefaultConsoleReporter) PrintSeriesSummary(series []*types.Series, splits map[string]validation.Split) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("MARKET DATA")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Source", "TF", "Bars", "From", "To", "Last Close", "Change", "Train/Val/Test"})

	total := 0
	for _, s := range series {
		if s == nil {
			continue
		}
		summary := Summarize(s, splits[s.Symbol])
		total += summary.Bars
		t.AppendRow(table.Row{
			summary.Symbol,
			summary.Source,
			summary.Timeframe,
			humanize.Comma(int64(summary.Bars)),
			formatTime(summary.Start),
			formatTime(summary.End),
			humanize.CommafWithDigits(summary.LastClose, 4),
			fmt.Sprintf("%+.2f%%", summary.ChangePct),
			fmt.Sprintf("%d/%d/%d", summary.Train, summary.Validation, summary.Test),
		})
	}
	t.AppendFooter(table.Row{"Total", "", "", humanize.Comma(int64(total))})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// PrintFoldSummary prints the walk-forward folds of each series. folds is
// keyed by symbol.
func (r *DefaultConsoleReporter) PrintFoldSummary(series []*types.Series, folds map[string][]validation.WalkForwardFold, window validation.FoldWindow) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(fmt.Sprintf("WALK-FORWARD FOLDS (%dd train / %dd test / %dd roll)", window.TrainDays, window.TestDays, window.RollDays))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Folds", "First Train", "Last Test", "Avg Train", "Avg Test"})

	for _, s := range series {
		if s == nil {
			continue
		}
		symbolFolds := folds[s.Symbol]
		if len(symbolFolds) == 0 {
			t.AppendRow(table.Row{s.Symbol, 0, "-", "-", "-", "-"})
			continue
		}

		trainBars, testBars := 0, 0
		for _, fold := range symbolFolds {
			trainBars += len(fold.Train)
			testBars += len(fold.Test)
		}
		first, last := symbolFolds[0], symbolFolds[len(symbolFolds)-1]
		t.AppendRow(table.Row{
			s.Symbol,
			len(symbolFolds),
			formatTime(first.TrainStart) + " → " + formatTime(first.TrainEnd),
			formatTime(last.TestStart) + " → " + formatTime(last.TestEnd),
			humanize.Comma(int64(trainBars / len(symbolFolds))),
			humanize.Comma(int64(testBars / len(symbolFolds))),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

func optionalString(s *string) string {
	if s == nil {
		return "(not set)"
	}
	return *s
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format("2006-01-02 15:04")
}
