// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GeorgePieVG/arc"
)

// config holds resolved tool settings from flags, env, and config file.
type config struct {
	Format       string `mapstructure:"format"`
	Workers      int    `mapstructure:"workers"`
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}

var (
	cfgFile string
	cfg     config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:           "arctool",
	Short:         "Inspect and extract game-data archives (WAD, Zip, GRP, PAK, LFD, RES, directories)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		return setupLogging(cfg.LogLevel, cfg.LogOutputDir)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().String("format", "", "force archive format (wad, zip, grp, pak, lfd, res, dir)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-output-dir", "", "directory to write log files (logs go to both console and file)")

	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.PersistentFlags().Lookup("log-output-dir"))

	listCmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List archive entries with size, type, and namespace",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}

	extractCmd := &cobra.Command{
		Use:   "extract <archive> <dest>",
		Short: "Extract all entries to a directory",
		Args:  cobra.ExactArgs(2),
		RunE:  runExtract,
	}
	extractCmd.Flags().Int("workers", 0, "extraction parallelism (0 = number of CPUs)")
	viper.BindPFlag("workers", extractCmd.Flags().Lookup("workers"))

	mapsCmd := &cobra.Command{
		Use:   "maps <archive>",
		Short: "List embedded map packages",
		Args:  cobra.ExactArgs(1),
		RunE:  runMaps,
	}

	detectCmd := &cobra.Command{
		Use:   "detect <archive>",
		Short: "Report the detected archive format",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}

	rootCmd.AddCommand(listCmd, extractCmd, mapsCmd, detectCmd)
}

// initConfig reads in config file and environment variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arctool"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("ARCTOOL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// openArchive opens the named archive read-only, honoring a forced format.
func openArchive(path string) (*arc.Archive, error) {
	return arc.OpenWithOptions(path, arc.OpenOptions{
		Format:   arc.FormatKind(cfg.Format),
		ReadOnly: true,
	})
}

// runList prints one line per entry.
func runList(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	count := 0
	listDir(a, a.Root(), &count)
	slog.Info("listed archive", "path", args[0], "format", a.Kind(), "entries", count)

	return nil
}

// listDir prints one directory's entries and recurses into subdirectories.
func listDir(a *arc.Archive, d *arc.Dir, count *int) {
	for _, e := range d.Entries() {
		fmt.Printf("%-10d %-10s %-10s %s\n", e.Size(), e.Type(), a.Namespace(e), e.Path())
		*count++
	}

	for _, sub := range d.Subdirs() {
		listDir(a, sub, count)
	}
}

// runExtract extracts the whole archive to the destination directory.
func runExtract(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	// OnEntryDone runs on extraction worker goroutines.
	var written atomic.Int64
	err = a.Extract(cmd.Context(), args[1], arc.ExtractOptions{
		MaxWorkers: cfg.Workers,
		OnEntryDone: func(e *arc.Entry, n int64, outputPath string) {
			written.Add(1)
			slog.Debug("extracted entry", "entry", e.Path(), "bytes", n, "output", outputPath)
		},
	})
	if err != nil {
		return err
	}

	slog.Info("extracted archive", "path", args[0], "dest", args[1], "entries", written.Load())

	return nil
}

// runMaps prints detected embedded map packages.
func runMaps(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	maps := a.DetectMaps()
	for _, m := range maps {
		status := "complete"
		if m.Incomplete {
			status = "incomplete"
		}
		fmt.Printf("%-10s %-6s %-10s lumps %d..%d\n", m.Name, m.Format, status, m.HeadIndex, m.EndIndex)
	}

	slog.Info("scanned for maps", "path", args[0], "found", len(maps))

	return nil
}

// runDetect reports the detected archive format.
func runDetect(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println(a.Kind())

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
