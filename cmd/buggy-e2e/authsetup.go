package main

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"

	"github.com/kuitang/buggy-e2e/internal/authstate"
	"github.com/kuitang/buggy-e2e/internal/obs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

func newAuthSetupCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "auth-setup",
		Short: "Log the primary user in and save the browser storage state",
		Long: `auth-setup logs in as the primary user against BASE_URL and writes the
storage state to AUTH_STATE_PATH. An existing artifact made for the same
base URL and credentials is reused unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := obs.From(ctx).With("pkg", "cmd")

			pw, err := playwright.Run()
			if err != nil {
				return fmt.Errorf("start playwright (try `buggy-e2e install`): %w", err)
			}
			defer pw.Stop()

			browser, err := pages.Launch(pw, cfg.Browser)
			if err != nil {
				return err
			}
			defer browser.Close()

			if force {
				if err := authstate.Bootstrap(ctx, browser, cfg); err != nil {
					return err
				}
				log.Info("auth_setup_done", "path", cfg.AuthStatePath, "written", true)
				return nil
			}
			written, err := authstate.Ensure(ctx, browser, cfg)
			if err != nil {
				return err
			}
			log.Info("auth_setup_done", "path", cfg.AuthStatePath, "written", written)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "regenerate the artifact even if it is fresh")
	return cmd
}
