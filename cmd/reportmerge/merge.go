package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/dgallion1/reportmerge/internal/inject"
	"github.com/dgallion1/reportmerge/internal/inventory"
	"github.com/dgallion1/reportmerge/internal/report"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// manifest is the YAML description of one merge run.
type manifest struct {
	Title            string             `yaml:"title"`
	Date             string             `yaml:"date"`
	Chapter          int                `yaml:"chapter"`
	SectionStart     int                `yaml:"section_start"`
	RenumberHeadings bool               `yaml:"renumber_headings"`
	RenumberCaptions bool               `yaml:"renumber_captions"`
	Banners          bool               `yaml:"banners"`
	Mapping          map[string]string  `yaml:"mapping"`
	Fragments        []manifestFragment `yaml:"fragments"`
	Images           []manifestImage    `yaml:"images"`
}

type manifestFragment struct {
	File    string `yaml:"file"`
	Title   string `yaml:"title"`
	Section string `yaml:"section"` // per-fragment section number override, e.g. "7.3"
	Disable bool   `yaml:"disable"`
}

type manifestImage struct {
	File    string  `yaml:"file"`
	Caption string  `yaml:"caption"`
	Anchor  string  `yaml:"anchor"`
	WidthCM float64 `yaml:"width_cm"`
}

var (
	mergeManifestPath string
	mergeOutputPath   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the fragments listed in a YAML manifest",
	Long: `Merge the report sections listed in a YAML manifest into one
.docx document.

Example manifest:

  title: Pavement Design Report
  date: 2026-08-23
  chapter: 5
  renumber_headings: true
  renumber_captions: true
  banners: true
  mapping:
    "4.2": "5.9"
  fragments:
    - file: sections/site-investigation.docx
      title: Site Investigation
    - file: sections/traffic-analysis.docx
      title: Traffic Analysis
      section: "5.4"
  images:
    - file: figures/layout.png
      caption: Figure 5-1 General layout
      anchor: as shown in the figure below
      width_cm: 14`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeManifestPath, "manifest", "m", "report.yaml", "Path to the merge manifest")
	mergeCmd.Flags().StringVarP(&mergeOutputPath, "output", "o", "merged-report.docx", "Output document path")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(mergeManifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if m.Chapter == 0 {
		m.Chapter = 1
	}

	baseDir := filepath.Dir(mergeManifestPath)
	inv := inventory.New()
	for _, mf := range m.Fragments {
		path := mf.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fragment %s: %w", mf.File, err)
		}
		frag, err := inv.Ingest(filepath.Base(mf.File), content)
		if err != nil {
			return err
		}
		if mf.Title != "" {
			inv.SetTitle(frag.ID, mf.Title)
		}
		if mf.Section != "" {
			inv.SetSectionNumber(frag.ID, mf.Section)
		}
		if mf.Disable {
			inv.SetEnabled(frag.ID, false)
		}
	}

	req := report.Request{
		Chapter:          m.Chapter,
		SectionStart:     m.SectionStart,
		RenumberHeadings: m.RenumberHeadings,
		RenumberCaptions: m.RenumberCaptions,
		SectionBanners:   m.Banners,
		ProjectTitle:     m.Title,
		ReportDate:       m.Date,
		Mapping:          m.Mapping,
	}
	for _, mi := range m.Images {
		path := mi.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		imgData, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image %s: %w", mi.File, err)
		}
		width := mi.WidthCM
		if width <= 0 {
			width = 14
		}
		req.Insertions = append(req.Insertions, inject.Insertion{
			Image:    imgData,
			Caption:  mi.Caption,
			Anchor:   mi.Anchor,
			WidthEMU: int64(width * docmodel.EMUPerCM),
		})
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	result, err := report.NewMerger(inv, log).Merge(req)
	if err != nil {
		return err
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Name, d.Message)
	}
	if err := os.WriteFile(mergeOutputPath, result.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("wrote %s (%d fragments, %d warnings)\n", mergeOutputPath, len(inv.Enabled()), len(result.Diagnostics))
	return nil
}
