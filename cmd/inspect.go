package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	exif "github.com/dsoprea/go-exif/v3"
	"github.com/spf13/cobra"

	"squish/internal/scale"
	"squish/internal/tui"
	"squish/pkg/imgutil"
)

var (
	inspectSize   int
	inspectSmooth bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <image>...",
	Short: "Report image dimensions and the resize plan without writing anything",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, path := range args {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			inspectOne(path)
		}
		return nil
	},
}

func inspectOne(path string) {
	fmt.Fprintf(os.Stdout, "%s\n", inspectFileStyle.Render(path))

	kind, err := imgutil.SniffFile(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "  %s\n", inspectErrStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(os.Stdout, "  format: %s\n", kind)

	img, err := imgutil.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "  %s\n", inspectErrStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(os.Stdout, "  dimensions: %dx%d\n", img.Width(), img.Height())

	plan := scale.ChoosePlan(img.Width(), img.Height(), inspectSize, inspectSmooth)
	fmt.Fprintf(os.Stdout, "  plan: %s\n", plan)

	if model, taken := cameraMetadata(path); model != "" || taken != "" {
		if model != "" {
			fmt.Fprintf(os.Stdout, "  camera: %s\n", inspectDimStyle.Render(model))
		}
		if taken != "" {
			fmt.Fprintf(os.Stdout, "  taken: %s\n", inspectDimStyle.Render(taken))
		}
	}
}

// cameraMetadata pulls the camera model and capture time out of the EXIF
// block, if there is one. Missing or unreadable EXIF is not an error.
func cameraMetadata(path string) (model, taken string) {
	rawExif, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return "", ""
	}

	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return "", ""
	}

	for _, tag := range tags {
		switch tag.TagName {
		case "Model":
			model = strings.TrimSpace(tag.FormattedFirst)
		case "DateTimeOriginal":
			taken = strings.TrimSpace(tag.FormattedFirst)
		case "DateTime":
			if taken == "" {
				taken = strings.TrimSpace(tag.FormattedFirst)
			}
		}
	}
	return model, taken
}

var (
	inspectFileStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectDimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectErrStyle  = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	inspectCmd.Flags().IntVarP(&inspectSize, "size", "s", 400, "size bound the plan should fit")
	inspectCmd.Flags().BoolVarP(&inspectSmooth, "smooth", "S", false, "plan smooth scaling instead of subsampling")

	rootCmd.AddCommand(inspectCmd)
}
