package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bonktools/build-detect/internal/catalog"
	"github.com/bonktools/build-detect/internal/detect"
	"github.com/bonktools/build-detect/internal/evaluate"
	"github.com/bonktools/build-detect/internal/preprocess"
	"github.com/bonktools/build-detect/internal/strategy"
	"github.com/bonktools/build-detect/pkg/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <fixture.yaml>",
	Short: "Score detection accuracy against ground-truth fixtures",
	Long: `evaluate runs the detection pipeline over every image named in the
ground-truth fixture and scores the detected entities against the expected
multisets. Names are compared after normalization, so fixture entries may
use display names as written on the wiki.

With --record, each run's accuracy and resource cost is appended to the
SQLite history database for regression tracking.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("strategy", strategy.Balanced, "detection strategy")
	evaluateCmd.Flags().String("images", ".", "directory containing the fixture's images")
	evaluateCmd.Flags().Bool("record", false, "append runs to the history database")
	rootCmd.AddCommand(evaluateCmd)
}

// imageReport is the per-image evaluation output.
type imageReport struct {
	ImageKey string              `json:"image_key"`
	Metrics  evaluate.Metrics    `json:"metrics"`
	Bench    evaluate.BenchStats `json:"bench"`
	Detected []string            `json:"detected"`
	Expected []string            `json:"expected"`
	Error    string              `json:"error,omitempty"`
}

// evaluationReport aggregates an evaluation across the whole fixture.
type evaluationReport struct {
	Strategy string           `json:"strategy"`
	Images   []imageReport    `json:"images"`
	Overall  evaluate.Metrics `json:"overall"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	pipeline, cat, _, err := newPipeline(log)
	if err != nil {
		return err
	}

	records, err := evaluate.LoadGroundTruth(args[0])
	if err != nil {
		return err
	}

	strategyName, _ := cmd.Flags().GetString("strategy")
	imagesDir, _ := cmd.Flags().GetString("images")
	record, _ := cmd.Flags().GetBool("record")

	var history *evaluate.History
	if record {
		history, err = evaluate.OpenHistory(viper.GetString("history_db"))
		if err != nil {
			return err
		}
		defer history.Close()
	}

	report := evaluationReport{Strategy: strategyName}
	var allDetected, allExpected []string

	for _, gt := range records {
		ir := imageReport{ImageKey: gt.ImageKey}

		expected := normalizeNames(gt.ExpectedNames)
		ir.Expected = expected

		result, stats, err := runOne(cmd, pipeline, filepath.Join(imagesDir, gt.ImageKey), strategyName)
		if err != nil {
			ir.Error = err.Error()
			ir.Metrics = evaluate.Score(nil, expected)
			report.Images = append(report.Images, ir)
			allExpected = append(allExpected, expected...)
			continue
		}

		detected := detectedNames(result, cat)
		ir.Detected = detected
		ir.Bench = stats
		ir.Metrics = evaluate.Score(detected, expected)
		report.Images = append(report.Images, ir)

		allDetected = append(allDetected, detected...)
		allExpected = append(allExpected, expected...)

		if history != nil {
			if err := history.Record(evaluate.Run{
				ImageKey:       gt.ImageKey,
				Strategy:       strategyName,
				ElapsedMS:      stats.ElapsedMS,
				HeapDeltaBytes: stats.HeapDeltaBytes,
				Metrics:        ir.Metrics,
			}); err != nil {
				return err
			}
		}
	}

	report.Overall = evaluate.Score(allDetected, allExpected)
	return printJSON(report)
}

// runOne benchmarks a single detection over the image at path.
func runOne(cmd *cobra.Command, pipeline *detect.Pipeline, path, strategyName string) (*types.DetectionResult, evaluate.BenchStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, evaluate.BenchStats{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, err := preprocess.Decode(f)
	if err != nil {
		return nil, evaluate.BenchStats{}, err
	}

	return evaluate.Benchmark(func() (*types.DetectionResult, error) {
		return pipeline.Detect(cmd.Context(), img, strategyName, detect.Options{})
	})
}

// detectedNames expands a detection result into the normalized display-name
// multiset the evaluator scores.
func detectedNames(result *types.DetectionResult, cat *catalog.Catalog) []string {
	var names []string
	for _, e := range result.Entries {
		name := e.EntityID
		if entity, ok := cat.Get(e.EntityID); ok {
			name = entity.Name
		}
		for i := 0; i < e.EstimatedCount; i++ {
			names = append(names, catalog.NormalizeName(name))
		}
	}
	return names
}

func normalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = catalog.NormalizeName(n)
	}
	return out
}
