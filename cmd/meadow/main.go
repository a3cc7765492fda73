// meadow builds a personal blog and project portfolio from a directory
// of markdown entries: it validates front matter, compiles bodies,
// copies referenced assets under content-hashed public paths, and emits
// per-collection data files plus a search index.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/linqiu/meadow/internal/build"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "meadow",
		Short:         "Static blog and portfolio content builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd(), newVersionCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	var (
		contentDir  string
		outDir      string
		base        string
		concurrency int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the content directory into static artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			result, err := build.Run(build.Options{
				ContentDir:  contentDir,
				OutDir:      outDir,
				Base:        base,
				Concurrency: concurrency,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "built %d posts, %d projects, %d basic records",
				len(result.Collections.Posts),
				len(result.Collections.Projects),
				len(result.Collections.Basic))
			if n := len(result.Warnings); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d unresolved asset references)", n)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&contentDir, "content", "content", "content root directory")
	cmd.Flags().StringVar(&outDir, "out", "dist", "output directory")
	cmd.Flags().StringVar(&base, "base", "/static", "public base path for copied assets")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max entries processed in parallel (0 = default)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-stage build info")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the meadow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
