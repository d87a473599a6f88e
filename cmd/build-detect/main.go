// Package main is the entry point for the build-detect CLI, the command
// surface over the screenshot build detection pipeline.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bonktools/build-detect/internal/catalog"
	"github.com/bonktools/build-detect/internal/detect"
	"github.com/bonktools/build-detect/internal/ocr"
	"github.com/bonktools/build-detect/internal/templates"
)

// rootCmd is the base command for the build-detect CLI.
var rootCmd = &cobra.Command{
	Use:   "build-detect",
	Short: "Recognize game entities in build screenshots",
	Long: `build-detect turns a screenshot of an in-game build into a
confidence-scored list of recognized entities (characters, weapons, items,
tomes, shrines) with estimated stack counts, by fusing OCR text recognition
with icon template matching against the game's catalog.

Detection is parameterized by a named strategy ("fast", "balanced",
"accurate") trading latency against recall. The evaluate subcommand scores
detections against ground-truth fixtures for accuracy tracking.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./build-detect.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "catalog data directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("build-detect")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "build-detect"))
		}
	}

	viper.SetDefault("catalog_dir", "data")
	viper.SetDefault("ocr.language", "eng")
	viper.SetDefault("ocr.timeout", ocr.DefaultTimeout.String())
	viper.SetDefault("ocr.min_confidence", ocr.DefaultMinConfidence)
	viper.SetDefault("history_db", "build-detect-runs.db")

	viper.SetEnvPrefix("BUILD_DETECT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the JSON logger every component receives.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch lv, _ := rootCmd.PersistentFlags().GetString("log-level"); lv {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// catalogDir resolves the catalog directory from flag or config.
func catalogDir() string {
	if dir, _ := rootCmd.PersistentFlags().GetString("catalog"); dir != "" {
		return dir
	}
	return viper.GetString("catalog_dir")
}

// newPipeline wires the catalog, template store, OCR adapter, and pipeline
// from configuration.
func newPipeline(log *slog.Logger) (*detect.Pipeline, *catalog.Catalog, *templates.Store, error) {
	cat, err := catalog.LoadDir(catalogDir())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading catalog: %w", err)
	}

	store := templates.NewStore(cat, log)

	timeout, err := time.ParseDuration(viper.GetString("ocr.timeout"))
	if err != nil {
		timeout = ocr.DefaultTimeout
	}
	engine := ocr.NewTesseract(viper.GetString("ocr.language"), viper.GetString("ocr.tessdata_prefix"))
	adapter := ocr.NewAdapter(engine, log,
		ocr.WithTimeout(timeout),
		ocr.WithMinConfidence(viper.GetFloat64("ocr.min_confidence")))

	return detect.New(store, adapter, cat, log), cat, store, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
