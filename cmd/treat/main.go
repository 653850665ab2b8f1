// Command treat designs treatments for a tabular data file and prints the
// score frame. Optionally writes the prepared (derived) frame and an HTML
// report.
//
// Usage:
//
//	treat -input churn.csv -outcome churned -target yes [-inputs a,b,c]
//	      [-folds 3] [-min-fraction 0.02] [-seed 42]
//	      [-prepared out.csv] [-report report.html]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"gotreat/adapters/tabfile"
	"gotreat/app"
	"gotreat/domain/treatment"
	"gotreat/internal"
	"gotreat/internal/report"
	"gotreat/ports"
)

func main() {
	// Optional .env for LOG_LEVEL and friends
	_ = godotenv.Load()

	inputPath := flag.String("input", "", "path to CSV or XLSX data file")
	outcome := flag.String("outcome", "", "outcome column name")
	target := flag.String("target", "", "outcome value treated as the positive class")
	inputs := flag.String("inputs", "", "comma-separated input columns (default: all except outcome)")
	folds := flag.Int("folds", treatment.DefaultFoldCount, "cross-validation fold count")
	minFraction := flag.Float64("min-fraction", treatment.DefaultMinFraction, "frequency floor for level indicators")
	seed := flag.Int64("seed", 0, "fold assignment seed")
	preparedPath := flag.String("prepared", "", "write the prepared training frame as CSV (uses production encoders)")
	reportPath := flag.String("report", "", "write an HTML score report")
	flag.Parse()

	logger := internal.DefaultLogger
	if *inputPath == "" || *outcome == "" || *target == "" {
		flag.Usage()
		os.Exit(2)
	}

	var reader ports.FrameReader = tabfile.NewDataReader()
	f, err := reader.Read(*inputPath)
	if err != nil {
		logger.Error("read data: %v", err)
		os.Exit(1)
	}

	inputCols := splitList(*inputs)
	if len(inputCols) == 0 {
		for _, name := range f.Names() {
			if name != *outcome {
				inputCols = append(inputCols, name)
			}
		}
	}

	cfg := treatment.DefaultConfig()
	cfg.FoldCount = *folds
	cfg.MinFraction = *minFraction
	cfg.Seed = *seed

	designer := app.NewDesigner()
	result, err := designer.Design(context.Background(), f, *outcome, *target, inputCols, cfg)
	if err != nil {
		logger.Error("design failed: %v", err)
		os.Exit(1)
	}

	fmt.Print(report.Markdown(fmt.Sprintf("Treatment scores for %s", *inputPath), result.Scores))

	if *preparedPath != "" {
		prep, err := app.Prepare(result.Design, f, app.PrepareOptions{IncludeOutcome: true})
		if err != nil {
			logger.Error("prepare failed: %v", err)
			os.Exit(1)
		}
		for _, warning := range prep.Warnings {
			logger.Warn("%s: %s", warning.Kind, warning.Message)
		}
		out, err := os.Create(*preparedPath)
		if err != nil {
			logger.Error("create %s: %v", *preparedPath, err)
			os.Exit(1)
		}
		defer out.Close()
		if err := tabfile.WriteCSV(out, prep.Frame); err != nil {
			logger.Error("write prepared frame: %v", err)
			os.Exit(1)
		}
		logger.Info("wrote prepared frame to %s", *preparedPath)
	}

	if *reportPath != "" {
		html := report.HTML(fmt.Sprintf("Treatment scores for %s", *inputPath), result.Scores)
		if err := os.WriteFile(*reportPath, html, 0o644); err != nil {
			logger.Error("write report: %v", err)
			os.Exit(1)
		}
		logger.Info("wrote report to %s", *reportPath)
	}
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
