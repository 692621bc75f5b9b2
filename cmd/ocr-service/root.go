package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use: "ocr-service",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
}
