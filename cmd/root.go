package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "squish",
	Short: "squish - batch-resize images with a pool of parallel workers",
	Long:  "squish resizes every image in a directory concurrently, fitting each inside a square bound by smooth scaling or pixel subsampling.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
