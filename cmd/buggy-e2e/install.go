package main

import (
	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Playwright driver and browser",
		Long:  "install downloads the Playwright driver and the browser named by BROWSER, or every browser with --all.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts := &playwright.RunOptions{}
			if !all {
				opts.Browsers = []string{cfg.Browser.Name}
			}
			return playwright.Install(opts)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "install chromium, firefox and webkit")
	return cmd
}
