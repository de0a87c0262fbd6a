package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcbflow/thtgen/internal/config"
	"github.com/pcbflow/thtgen/pkg/asmfile"
	"github.com/pcbflow/thtgen/pkg/pipeline"
)

var (
	genBOM     string
	genPINS    string
	genClient  string
	genProgram string
	genInch    bool
	genOut     string
	genWorkers int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate manufacturing CSV files",
	Long: `Parses the placement export (and the PINS export when given) and
writes up to four CSV files into the output directory:

  {program}_faza1_TOP.csv   placements, side T
  {program}_faza2_TOP.csv   placements, side B
  {program}_faza1_BOT.csv   cross-referenced pads, side T
  {program}_faza2_BOT.csv   cross-referenced pads, side B

A side with no data produces no file; that is reported, not an error.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genBOM, "bom", "", "placement (BOM) export file (required)")
	generateCmd.Flags().StringVar(&genPINS, "pins", "", "PINS export file (optional)")
	generateCmd.Flags().StringVar(&genClient, "client", "", "client identifier")
	generateCmd.Flags().StringVar(&genProgram, "program", "", "program/part number (required)")
	generateCmd.Flags().BoolVar(&genInch, "inch", false, "input coordinates are inches")
	generateCmd.Flags().StringVar(&genOut, "out", "", "output directory (default from config, else .)")
	generateCmd.Flags().IntVar(&genWorkers, "workers", 0, "worker count for line generation (default NumCPU)")
	generateCmd.MarkFlagRequired("bom")
	generateCmd.MarkFlagRequired("program")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	client := genClient
	if client == "" {
		client = cfg.Client
	}
	outDir := genOut
	if outDir == "" {
		outDir = cfg.OutDir
	}
	factor := cfg.Factor()
	if genInch {
		factor = asmfile.FactorInch
	}
	workers := genWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithProgress(func(percent int, message string) {
			fmt.Printf("[%3d%%] %s\n", percent, message)
		}),
	)

	result := p.Generate(pipeline.Request{
		BOMPath:  genBOM,
		PINSPath: genPINS,
		Client:   client,
		Program:  genProgram,
		Factor:   factor,
		OutDir:   outDir,
		Workers:  workers,
	})

	if !result.OK {
		return fmt.Errorf("generation failed: %s", result.Message)
	}

	fmt.Printf("✓ %s (%.2fs)\n", result.Message, result.Elapsed.Seconds())
	for _, path := range result.TopPaths {
		fmt.Printf("  top: %s\n", path)
	}
	for _, path := range result.BotPaths {
		fmt.Printf("  bot: %s\n", path)
	}
	if !result.BotOK {
		fmt.Println("  no pad-level output (no PINS data or no matching parts)")
	}
	return nil
}
