// Command docshot builds a directory of markdown documentation into HTML,
// rendering screenshot directives into embedded figures along the way.
//
// The heavy lifting lives in the library packages; this binary only loads the
// project configuration, walks the source tree, and reports results. Projects
// that need registered local apps or authenticated browser contexts embed the
// builder in their own tooling instead, since factories are Go functions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	configPath string
	outputDir  string
	keepGoing  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docshot",
		Short: "Build markdown documentation with embedded webpage screenshots",
		Long: "docshot renders markdown to HTML, turning ```screenshot fenced blocks " +
			"into figures captured from live webpages with a headless browser.",
	}

	buildCmd := &cobra.Command{
		Use:   "build <source-dir>",
		Short: "Render a documentation source tree to HTML",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVarP(&configPath, "config", "c", "", "Project config file (default <source-dir>/docshot.yaml)")
	buildCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides the config)")
	buildCmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Continue building remaining documents when one fails")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docshot version %s\n", version)
		},
	}

	rootCmd.AddCommand(buildCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
