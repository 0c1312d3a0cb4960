// Package main provides the rdfsummary binary entry point.
// rdfsummary reduces an N-Triples dump to a weighted namespace graph and
// prints it as Graphviz DOT (or JSON, N-Quads, JSON-LD, Mangle facts).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "rdfsummary"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	flagCfg := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "rdfsummary [flags] TRIPLES...",
		Short: "Summarize an N-Triples dump as a namespace graph",
		Long: `rdfsummary reduces every subject and object of an N-Triples dump to its
namespace short name, every predicate to a "namespace:localname" label, and
counts how often each (subject, predicate, object) combination occurs.

The curie map (--curie-map) is read first, then every triple file. Use "-"
to read triples from standard input. Files ending in .gz are decompressed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, flagCfg)
			if len(args) > 0 {
				cfg.Triples = args
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	f.StringVarP(&flagCfg.CurieMap, "curie-map", "m", flagCfg.CurieMap, "Curie map file")
	f.StringVar(&flagCfg.CurieFormat, "curie-format", flagCfg.CurieFormat, "Curie map format (lines, yaml)")
	f.StringVarP(&flagCfg.Output, "output", "o", flagCfg.Output, `Output file ("-" for standard output)`)
	f.StringVarP(&flagCfg.Format, "format", "f", flagCfg.Format, "Output format (dot, json, nquads, jsonld, mangle)")
	f.StringVar(&flagCfg.Title, "title", flagCfg.Title, "Name the graph title is derived from (default: first triple file)")
	f.StringVar(&flagCfg.DB, "db", flagCfg.DB, "SQLite file to merge this run into; the merged tally is emitted")
	f.IntVarP(&flagCfg.Workers, "workers", "w", flagCfg.Workers, "Number of triple files read concurrently")
	f.IntVar(&flagCfg.CacheSize, "cache-size", flagCfg.CacheSize, "Reduced-token cache entries per worker (0 disables)")
	f.StringVar(&flagCfg.LogMode, "log-mode", flagCfg.LogMode, "Log mode (dev, prod)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// applyFlags copies every explicitly set flag from flagCfg into cfg.
func applyFlags(cmd *cobra.Command, cfg *Config, flagCfg Config) {
	f := cmd.Flags()
	if f.Changed("curie-map") {
		cfg.CurieMap = flagCfg.CurieMap
	}
	if f.Changed("curie-format") {
		cfg.CurieFormat = flagCfg.CurieFormat
	}
	if f.Changed("output") {
		cfg.Output = flagCfg.Output
	}
	if f.Changed("format") {
		cfg.Format = flagCfg.Format
	}
	if f.Changed("title") {
		cfg.Title = flagCfg.Title
	}
	if f.Changed("db") {
		cfg.DB = flagCfg.DB
	}
	if f.Changed("workers") {
		cfg.Workers = flagCfg.Workers
	}
	if f.Changed("cache-size") {
		cfg.CacheSize = flagCfg.CacheSize
	}
	if f.Changed("log-mode") {
		cfg.LogMode = flagCfg.LogMode
	}
}
