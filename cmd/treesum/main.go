// Package main provides the treesum CLI. It walks a project tree and
// produces machine-consumable summaries for language-model context windows:
// per-directory SUMMARY artifacts (summary), a structural document of
// Python signatures (python), and a README collation (readme).
//
// The CLI is a thin shell: configuration resolution and all generation
// logic live in internal packages, and persistence beyond writing the
// output files (committing, pushing) is left to the calling workflow.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"treesum/internal/config"
	"treesum/internal/summary"
	"treesum/internal/textutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		rootDir string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:           "treesum",
		Short:         "Generate machine-consumable project summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "project root directory")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	newGenerator := func() (*summary.Generator, *zap.SugaredLogger, error) {
		log := newLogger(verbose)
		g, err := summary.New(rootDir, summary.WithLogger(log))
		return g, log, err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Write one SUMMARY artifact per included directory",
		RunE: func(c *cobra.Command, args []string) error {
			g, _, err := newGenerator()
			if err != nil {
				return err
			}
			written, err := g.GenerateAllSummaries()
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintln(c.OutOrStdout(), p)
			}
			fmt.Fprintf(c.OutOrStdout(), "Wrote %d summaries under %s\n", len(written), g.Root())
			return nil
		},
	})

	var pythonOut string
	pythonCmd := &cobra.Command{
		Use:   "python",
		Short: "Write a structural summary of all Python signatures",
		RunE: func(c *cobra.Command, args []string) error {
			g, _, err := newGenerator()
			if err != nil {
				return err
			}
			text, err := g.GeneratePythonSummary()
			if err != nil {
				return err
			}
			out := pythonOut
			if out == "" {
				out = filepath.Join(g.Root(), summary.PythonSummaryName)
			}
			if err := os.WriteFile(out, textutil.EnsureTrailingLF([]byte(text)), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	pythonCmd.Flags().StringVarP(&pythonOut, "out", "o", "", "output path (default <root>/"+summary.PythonSummaryName+")")
	cmd.AddCommand(pythonCmd)

	var readmeOut string
	readmeCmd := &cobra.Command{
		Use:   "readme",
		Short: "Concatenate all project README files",
		RunE: func(c *cobra.Command, args []string) error {
			g, _, err := newGenerator()
			if err != nil {
				return err
			}
			text, err := g.GenerateReadmeSummary()
			if err != nil {
				return err
			}
			out := readmeOut
			if out == "" {
				out = filepath.Join(g.Root(), summary.ReadmeSummaryName)
			}
			if err := os.WriteFile(out, textutil.EnsureTrailingLF([]byte(text)), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	readmeCmd.Flags().StringVarP(&readmeOut, "out", "o", "", "output path (default <root>/"+summary.ReadmeSummaryName+")")
	cmd.AddCommand(readmeCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create starter " + config.FileName + " and " + config.IgnoreFileName + " files",
		RunE: func(c *cobra.Command, args []string) error {
			created, err := config.WriteStarterFiles(rootDir)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "Nothing to do; configuration files already exist")
				return nil
			}
			for _, p := range created {
				fmt.Fprintln(c.OutOrStdout(), "Created", p)
			}
			return nil
		},
	})

	return cmd
}

// newLogger builds the CLI logger: warnings and errors by default, full
// debug output with -v. Logging failures degrade to a nop logger rather
// than blocking summarization.
func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
