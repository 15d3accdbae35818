// cmd is the nexus entry point: a cobra CLI whose serve command wires all
// layers and starts the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shivanand-hulikatti/event-nexus/internal/config"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
)

var (
	version  = "dev"
	cfgFile  string
	cfg      config.Config
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:     "nexus",
	Short:   "Event discovery and registration service",
	Long:    `nexus serves an event catalog with search, per-viewer registration, favorites, profile and an organizer dashboard.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./nexus.yaml or ~/.config/event-nexus/nexus.yaml)")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level: debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(serveCmd, eventsCmd, migrateCmd)
}

func initConfig(cmd *cobra.Command) error {
	v := viper.New()
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		_ = v.BindPFlag("log.level", f)
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := log.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		closer, err := log.InitFile(cfg.Log.File, level)
		if err != nil {
			return err
		}
		closeLog = closer
	} else {
		log.Init(os.Stderr, level)
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
