package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bonktools/build-detect/internal/detect"
	"github.com/bonktools/build-detect/internal/preprocess"
	"github.com/bonktools/build-detect/internal/render"
	"github.com/bonktools/build-detect/internal/strategy"
	"github.com/bonktools/build-detect/pkg/types"
)

var detectCmd = &cobra.Command{
	Use:   "detect <screenshot>",
	Short: "Detect build entities in a screenshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().String("strategy", strategy.Balanced, "detection strategy (see 'strategies')")
	detectCmd.Flags().Bool("debug", false, "include pre-fusion candidate lists in the output")
	detectCmd.Flags().String("overlay", "", "write a PNG with candidate boxes drawn to this path (implies --debug)")
	detectCmd.Flags().String("region", "", "restrict detection to x,y,w,h (original-image pixels)")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := newLogger()

	pipeline, _, _, err := newPipeline(log)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening screenshot: %w", err)
	}
	defer f.Close()

	img, err := preprocess.Decode(f)
	if err != nil {
		return err
	}

	strategyName, _ := cmd.Flags().GetString("strategy")
	debug, _ := cmd.Flags().GetBool("debug")
	overlayPath, _ := cmd.Flags().GetString("overlay")

	opts := detect.Options{Debug: debug || overlayPath != ""}
	if regionSpec, _ := cmd.Flags().GetString("region"); regionSpec != "" {
		box, err := parseRegion(regionSpec)
		if err != nil {
			return err
		}
		opts.Region = &box
	}

	result, err := pipeline.Detect(cmd.Context(), img, strategyName, opts)
	if err != nil {
		return err
	}

	if overlayPath != "" {
		candidates := append([]types.DetectionCandidate{}, result.DebugTemplateCandidates...)
		candidates = append(candidates, result.DebugTextCandidates...)
		out, err := os.Create(overlayPath)
		if err != nil {
			return fmt.Errorf("creating overlay file: %w", err)
		}
		defer out.Close()
		if err := render.Overlay(img, candidates, out); err != nil {
			return err
		}
		if !debug {
			// Candidates were only requested for the overlay.
			result.DebugTextCandidates = nil
			result.DebugTemplateCandidates = nil
		}
	}

	return printJSON(result)
}

// parseRegion parses "x,y,w,h" into a bounding box.
func parseRegion(spec string) (types.BoundingBox, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return types.BoundingBox{}, fmt.Errorf("invalid region %q: want x,y,w,h", spec)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return types.BoundingBox{}, fmt.Errorf("invalid region %q: %w", spec, err)
		}
		vals[i] = v
	}
	return types.BoundingBox{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}
