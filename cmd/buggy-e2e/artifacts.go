package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuitang/buggy-e2e/internal/artifacts"
	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/obs"
)

var errArtifactsDisabled = errors.New("ARTIFACT_BUCKET is not set")

func newArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Publish or delete captured test artifacts",
	}
	cmd.AddCommand(newArtifactsPublishCmd(), newArtifactsDeleteCmd())
	return cmd
}

func publisher(cmd *cobra.Command) (*config.Config, *artifacts.Publisher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	pub, err := artifacts.NewPublisherFromConfig(cmd.Context(), cfg.Artifacts)
	if err != nil {
		return nil, nil, err
	}
	if pub == nil {
		return nil, nil, errArtifactsDisabled
	}
	return cfg, pub, nil
}

func newArtifactsPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish RUN_ID",
		Short: "Upload the captures of a run under CAPTURE_DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pub, err := publisher(cmd)
			if err != nil {
				return err
			}
			capture, err := artifacts.OpenCapture(cfg.CaptureDir, args[0])
			if err != nil {
				return err
			}
			keys, err := pub.Publish(cmd.Context(), capture)
			if err != nil {
				return err
			}
			obs.From(cmd.Context()).Info("artifacts_published", "pkg", "cmd", "run_id", capture.RunID, "count", len(keys))
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newArtifactsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete the published captures of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pub, err := publisher(cmd)
			if err != nil {
				return err
			}
			n, err := pub.DeleteRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d objects\n", n)
			return nil
		},
	}
}
