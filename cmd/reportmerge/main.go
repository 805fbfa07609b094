package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportmerge",
	Short: "Merge report sections into one renumbered Word document",
	Long: `reportmerge - report section merge tool

Merges independently authored report sections (.docx, with text-level
import of .md/.html/.txt/.csv/.pdf) into a single Word document with a
generated cover page, a table of contents, sequential section numbering
and renumbered figure/table captions.

Subcommands:
  merge    - Merge the fragments listed in a YAML manifest
  inspect  - Print a fragment's heading outline and content counts`,
}

func main() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
