// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ai-changelog",
	Short: "A CLI tool to generate a changelog from merged pull requests with an LLM.",
	Long: `ai-changelog collects the pull requests merged into a GitHub repository since
the previous release and asks a text-generation backend (OpenAI or Anthropic) to
turn them into a categorized Markdown changelog. It runs locally or as a GitHub
Action step, and can write the result into the body of the triggering release.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored log output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}
