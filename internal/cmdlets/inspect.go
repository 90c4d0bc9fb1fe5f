package cmdlets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/grid"
	"github.com/gizmo-platform/parker/pkg/spot"
	"github.com/gizmo-platform/parker/pkg/vision"
)

var (
	inspectCmd = &cobra.Command{
		Use:   "inspect <image>...",
		Short: "Show what the vehicle sees in a still frame",
		Long:  inspectCmdLongDocs,
		Run:   inspectCmdRun,
		Args:  cobra.MinimumNArgs(1),
	}

	inspectCmdLongDocs = `inspect runs line detection and spot detection on saved camera frames with the current config, and prints what it finds.  Use it while tuning the config with the configure command.  With --masks, the line mask and the mask of every spot color are written out as images next to each other for a visual check.`

	inspectMasks string
)

func init() {
	inspectCmd.Flags().StringVar(&inspectMasks, "masks", "", "Directory to write masks to")
	rootCmd.AddCommand(inspectCmd)
}

func inspectCmdRun(c *cobra.Command, args []string) {
	os.Exit(func() int {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
			return 1
		}

		rc := 0
		for _, path := range args {
			if err := inspectImage(cfg, path); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
				rc = 1
			}
		}
		return rc
	}())
}

func inspectImage(cfg *config.Config, path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Printf("%s (%dx%d)\n", path, b.Dx(), b.Dy())

	cropped := vision.Crop(img, cfg.Lines.Horizontal)
	mask := vision.New(cfg.Colors[cfg.LineColor]).LineMask(cropped)
	fmt.Printf("  line pixels: %d\n", mask.Count())
	if cx, ok := vision.LinePosition(mask); ok {
		offset := vision.SteeringOffset(cx, mask.Width, cfg.Centerline)
		fmt.Printf("  line at x=%d, offset %.3f\n", cx, offset)
	} else {
		fmt.Println("  no line")
	}
	fmt.Printf("  endpoint: %t\n", vision.EndpointReached(mask, cfg.Lines.Line1, cfg.Lines.Line2))

	g := grid.New(cfg.Grid, b.Dy(), b.Dx())
	for row := 1; row <= grid.Rows; row++ {
		for col := 1; col <= grid.Cols; col++ {
			r, _ := g.CellBounds(row, col)
			fmt.Printf("  cell %d,%d: %v\n", row, col, r)
		}
	}

	d := spot.New(cfg.Grid, cfg.Colors, spot.WithLogger(appLogger))
	colors := cfg.ColorNames()
	sort.Strings(colors)
	for _, color := range colors {
		found, side := d.DetectSpot(color, img)
		fmt.Printf("  %s: spot=%t side=%s top=%t bottom=%t\n",
			color, found, side,
			d.ColorInRow(color, img, 1),
			d.ColorInRow(color, img, 3),
		)
	}

	if inspectMasks == "" {
		return nil
	}
	if err := os.MkdirAll(inspectMasks, 0755); err != nil {
		return err
	}
	base := filepath.Base(path)
	base = base[:len(base)-len(filepath.Ext(base))]
	if err := imaging.Save(mask.Gray(), filepath.Join(inspectMasks, base+"_line.png")); err != nil {
		return err
	}
	for _, color := range colors {
		m := vision.ColorMask(img, cfg.Colors[color])
		if err := imaging.Save(m.Gray(), filepath.Join(inspectMasks, base+"_"+color+".png")); err != nil {
			return err
		}
	}
	return nil
}
