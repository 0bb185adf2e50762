/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "unisoruyor",
	Short: "UniSoruyor forum API server",
	Long: `UniSoruyor is a question and answer forum for university students.
This binary runs the API server and its maintenance tasks:

	unisoruyor server
	unisoruyor migrate up
	unisoruyor admin seed
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
