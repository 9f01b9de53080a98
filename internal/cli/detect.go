package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"clipd/internal/types"
	"clipd/internal/usecase"
)

// newDetectCommand runs the pipeline against a local file without the HTTP
// layer and prints the resulting clip list as JSON.
func newDetectCommand(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <input-video>",
		Short: "Detect and cut highlight clips from a local video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := buildUsecase(cmd, log)
			if err != nil {
				return err
			}

			policy, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}
			absIn, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			workDir, err := os.MkdirTemp("", "clipd-detect-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(workDir)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
			defer cancel()

			res, err := deps.uc.Detect(ctx, usecase.DetectInput{
				MediaPath:      absIn,
				Policy:         policy,
				WorkDir:        workDir,
				ClipsDir:       cfg.ClipsDir,
				ClipBaseURL:    cfg.ClipsDir,
				WindowSeconds:  cfg.ChunkWindowSeconds,
				OverlapSeconds: cfg.ChunkOverlapSeconds,
			})
			if err != nil {
				return err
			}
			if res.Warning != "" {
				log.Warn(res.Warning)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Clips)
		},
	}

	cmd.Flags().String("clips", "3", `Number of clips to produce, or "max"`)
	cmd.Flags().Float64("duration", 0, "Target clip duration in seconds (0 = automatic)")
	cmd.Flags().Bool("ai-pick", false, "Let the model decide how many clips to keep")
	return cmd
}

func policyFromFlags(cmd *cobra.Command) (types.Policy, error) {
	aiPick, _ := cmd.Flags().GetBool("ai-pick")
	duration, _ := cmd.Flags().GetFloat64("duration")
	if aiPick {
		return types.Policy{Mode: types.ModeAIPick, Duration: duration}, nil
	}

	raw, _ := cmd.Flags().GetString("clips")
	if raw == "max" {
		return types.Policy{
			Mode:     types.ModeUserChoice,
			Count:    types.ClipCount{Max: true},
			Duration: duration,
		}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return types.Policy{}, fmt.Errorf(`--clips must be a non-negative integer or "max", got %q`, raw)
	}
	return types.Policy{
		Mode:     types.ModeUserChoice,
		Count:    types.ClipCount{N: n},
		Duration: duration,
	}, nil
}
