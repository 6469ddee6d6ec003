package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"docnav/internal/app"
	"docnav/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		style   string
		tag     string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:          "docnav [path]",
		Short:        "Browse a tree of markdown documentation in the terminal",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if style != "" {
				cfg.Style = style
			}
			if verbose || cfg.Verbose {
				log.SetLevel(log.DebugLevel)
			}

			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			target = filepath.Clean(target)

			opts := app.Options{
				Style:      cfg.Style,
				TreeWidth:  cfg.TreeWidth,
				Excludes:   cfg.Excludes,
				Extensions: cfg.Extensions,
			}
			if tag != "" {
				return app.RunTagFiltered(target, tag, opts)
			}
			return app.Run(target, opts)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a docnav.yaml config file")
	cmd.Flags().StringVarP(&style, "style", "s", "", "glamour style used for rendering")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only show documents carrying this frontmatter tag")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
