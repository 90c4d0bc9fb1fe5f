package cmdlets

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gizmo-platform/parker/pkg/trajectory"
)

var (
	replayCmd = &cobra.Command{
		Use:   "replay <maneuver>",
		Short: "Replay a recorded maneuver",
		Long:  replayCmdLongDocs,
		Run:   replayCmdRun,
		Args:  cobra.ExactArgs(1),
	}

	replayCmdLongDocs = `replay plays a recorded maneuver into the vehicle and then stops.  Make sure there is room for the vehicle to move before running this.

Known maneuvers: ` + maneuverList()
)

func init() {
	rootCmd.AddCommand(replayCmd)
}

func replayCmdRun(c *cobra.Command, args []string) {
	os.Exit(func() int {
		man, err := trajectory.ParseManeuver(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\nKnown maneuvers: %s\n", args[0], err, maneuverList())
			return 1
		}

		cfg, err := loadConfig()
		if err != nil {
			appLogger.Error("Error loading config", "error", err)
			return 1
		}
		initLogger("replay", cfg.Log)

		ctx, cancel := signalContext()
		defer cancel()

		player := trajectory.NewPlayer(
			trajectory.NewDirStore(cfg.Recordings),
			cfg.Steering,
			cfg.Speed,
			trajectory.WithLogger(appLogger),
		)
		t, err := player.Load(man)
		if err != nil {
			appLogger.Error("Error loading maneuver", "error", err)
			return 1
		}
		appLogger.Info("Loaded maneuver", "maneuver", man, "points", len(t), "seconds", t.Duration())

		v := newVESC(cfg)
		if err := v.Connect(ctx); err != nil {
			appLogger.Error("Could not connect to VESC", "error", err)
			return 1
		}
		defer v.Close()

		if err := player.ReplayNamed(ctx, man, t, v); err != nil {
			appLogger.Error("Replay interrupted", "error", err)
			return 2
		}
		return 0
	}())
}
