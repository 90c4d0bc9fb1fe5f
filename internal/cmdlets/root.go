// Package cmdlets contains the main entrypoints of the various
// functions that the parker tool can perform.
package cmdlets

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gizmo-platform/parker/pkg/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "parker",
		Short: "Entrypoint for all parker commands",
		Long:  rootCmdLongDocs,
	}
	rootCmdLongDocs = `Parker drives a small vehicle along a painted line, finds the parking spot the operator asked for, and parks in it using recorded maneuvers.  The other commands drive it by hand, record and replay maneuvers, and help tune the camera settings.`

	configPath string

	appLogger = hclog.NewNullLogger()
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "parker.json", "Path to the config file")
}

// Entrypoint is the entrypoint into all cmdlets, it will dispatch to
// the right one.
func Entrypoint() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the defaults if
// there isn't one yet.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func initLogger(name string, lc config.Log) {
	ll := os.Getenv("LOG_LEVEL")
	if ll == "" {
		ll = "INFO"
	}

	var out io.Writer = os.Stderr
	if lc.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
		})
	}

	appLogger = hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.LevelFromString(ll),
		Output: out,
	})
	appLogger.Info("Log level", "level", appLogger.GetLevel())
}
