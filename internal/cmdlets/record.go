package cmdlets

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gizmo-platform/parker/pkg/rc"
	"github.com/gizmo-platform/parker/pkg/trajectory"
)

var (
	recordCmd = &cobra.Command{
		Use:   "record <maneuver>",
		Short: "Drive by hand and record a maneuver",
		Long:  recordCmdLongDocs,
		Run:   recordCmdRun,
		Args:  cobra.ExactArgs(1),
	}

	recordCmdLongDocs = `record works like rc, but also writes the steering and speed commands to the maneuver's file in the recordings directory until interrupted.  Any existing recording of the maneuver is replaced.

Known maneuvers: ` + maneuverList()
)

func init() {
	rootCmd.AddCommand(recordCmd)
}

func maneuverList() string {
	names := make([]string, len(trajectory.Maneuvers))
	for i, m := range trajectory.Maneuvers {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func recordCmdRun(c *cobra.Command, args []string) {
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
		initLogger("record", cfg.Log)

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

		store := trajectory.NewDirStore(cfg.Recordings)
		f, err := store.Create(man)
		if err != nil {
			appLogger.Error("Error creating recording", "error", err)
			return 1
		}
		defer f.Close()

		d := rc.New(cfg, jsc, v, rc.WithLogger(appLogger))
		rec := trajectory.NewRecorder(cfg.Timing.RecordInterval.Duration, trajectory.WithRecorderLogger(appLogger))

		var wg sync.WaitGroup
		var rows int
		var recErr error
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, recErr = rec.Run(ctx, f, d.Sample)
		}()

		appLogger.Info("Recording", "maneuver", man, "file", store.Path(man))
		driveErr := d.Run(ctx)
		cancel()
		wg.Wait()

		appLogger.Info("Recording saved", "file", store.Path(man), "samples", rows)
		if recErr != nil {
			appLogger.Error("Recording failed", "error", recErr)
			return 2
		}
		if driveErr != nil {
			appLogger.Error("Manual drive failed", "error", driveErr)
			return 2
		}
		return 0
	}())
}
