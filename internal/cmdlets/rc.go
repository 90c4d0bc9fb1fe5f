package cmdlets

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gizmo-platform/parker/pkg/rc"
)

var (
	rcCmd = &cobra.Command{
		Use:   "rc",
		Short: "Drive the vehicle by hand",
		Long:  rcCmdLongDocs,
		Run:   rcCmdRun,
	}

	rcCmdLongDocs = `rc drives the vehicle from the gamepad: the left stick steers, the right trigger drives forward and the left trigger reverses.  Pressing both triggers stops the motor, as does losing the controller for longer than the safety timeout.`
)

func init() {
	rootCmd.AddCommand(rcCmd)
}

func rcCmdRun(c *cobra.Command, args []string) {
	os.Exit(func() int {
		cfg, err := loadConfig()
		if err != nil {
			appLogger.Error("Error loading config", "error", err)
			return 1
		}
		initLogger("rc", cfg.Log)

		ctx, cancel := signalContext()
		defer cancel()

		jsc := newJoystick(cfg)
		defer jsc.Close()

		v := newVESC(cfg)
		if err := v.Connect(ctx); err != nil {
			appLogger.Error("Could not connect to VESC", "error", err)
			return 1
		}
		defer v.Close()

		d := rc.New(cfg, jsc, v, rc.WithLogger(appLogger))
		if err := d.Run(ctx); err != nil {
			appLogger.Error("Manual drive failed", "error", err)
			return 2
		}
		return 0
	}())
}
