package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dgallion1/reportmerge/internal/inventory"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print a fragment's heading outline and content counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	inv := inventory.New()
	frag, err := inv.Ingest(filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\t%s\n", frag.Name)
	fmt.Fprintf(tw, "title\t%s\n", frag.Title)
	fmt.Fprintf(tw, "paragraphs\t%d\n", frag.ParagraphCount)
	fmt.Fprintf(tw, "tables\t%d\n", frag.TableCount)
	fmt.Fprintf(tw, "images\t%d\n", frag.ImageCount)
	tw.Flush()

	if len(frag.Headings) > 0 {
		fmt.Println("\noutline:")
		for _, h := range frag.Headings {
			fmt.Printf("  %s%s\n", strings.Repeat("  ", h.Level-1), h.Text)
		}
	}
	return nil
}
