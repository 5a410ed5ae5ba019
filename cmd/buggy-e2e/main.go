// Command buggy-e2e runs the support tasks of the browser suite: the auth
// bootstrap, the stand-in application, browser installation and publishing
// of captured artifacts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/obs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "buggy-e2e",
		Short:         "Support tasks for the buggy cars browser suite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			obs.Init()
		},
	}
	root.AddCommand(
		newAuthSetupCmd(),
		newStandInCmd(),
		newInstallCmd(),
		newArtifactsCmd(),
	)
	return root
}

// loadConfig is a seam for tests.
var loadConfig = config.LoadConfig
