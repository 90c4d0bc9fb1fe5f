package cmdlets

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gizmo-platform/parker/pkg/config"
)

var (
	configCommand = &cobra.Command{
		Use:   "configure",
		Short: "configure prompts for the values tuned on the track",
		Long:  configCmdLongDocs,
		Run:   configCmdRun,
	}

	configCmdLongDocs = `configure prompts in a wizard style for the grid, line, steering, speed and color settings.  Run the inspect command on a frame from the camera to find good values.  An existing config file is used as the starting point.`
)

func init() {
	rootCmd.AddCommand(configCommand)
}

func configCmdRun(c *cobra.Command, args []string) {
	os.Exit(func() int {
		cfg, err := config.Load(configPath)
		exists := err == nil
		switch {
		case errors.Is(err, os.ErrNotExist):
			cfg = config.Default()
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error loading %s: %s\n", configPath, err)
			return 1
		}

		if err := cfg.WizardSurvey(exists); err != nil {
			fmt.Fprintf(os.Stderr, "Error running the wizard! (%s)\n", err)
			return 1
		}

		if err := cfg.Save(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %s\n", err)
			return 2
		}
		fmt.Printf("Configuration written to %s\n", configPath)
		return 0
	}())
}
