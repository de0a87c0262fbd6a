package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcbflow/thtgen/pkg/asmfile"
	"github.com/pcbflow/thtgen/pkg/asmfile/bom"
	"github.com/pcbflow/thtgen/pkg/asmfile/pins"
)

var (
	inspectBOM  string
	inspectPINS string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the parsed part model without generating output",
	Long: `Parses the given export files and prints the aggregated part model:
identifiers, sides, and data point counts. Useful for checking what an
export actually contains before generating.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectBOM, "bom", "", "placement (BOM) export file")
	inspectCmd.Flags().StringVar(&inspectPINS, "pins", "", "PINS export file")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectBOM == "" && inspectPINS == "" {
		return fmt.Errorf("nothing to inspect: pass --bom and/or --pins")
	}

	if inspectBOM != "" {
		parser, err := bom.NewParser()
		if err != nil {
			return err
		}
		result, err := parser.ParseFile(inspectBOM)
		if err != nil {
			return fmt.Errorf("error parsing BOM: %w", err)
		}
		fmt.Printf("BOM: %s (%s)\n", result.Message, result.Elapsed)
		printParts(result.Parts)
	}

	if inspectPINS != "" {
		parser, err := pins.NewParser()
		if err != nil {
			return err
		}
		result, err := parser.ParseFile(inspectPINS)
		if err != nil {
			return fmt.Errorf("error parsing PINS: %w", err)
		}
		fmt.Printf("PINS: %s (%s)\n", result.Message, result.Elapsed)
		printParts(result.Parts)
	}
	return nil
}

func printParts(set *asmfile.PartSet) {
	for _, part := range set.Parts() {
		fmt.Printf("  %-12s side %s  placements=%d pads=%d\n",
			part.ID, part.Side, len(part.Placements), len(part.Pads))
	}
}
