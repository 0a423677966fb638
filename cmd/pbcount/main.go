package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pbcount/ddnnfc/internal/ddnnf"
	"github.com/pbcount/ddnnfc/internal/opb"
	"github.com/pbcount/ddnnfc/internal/pbc"
)

const (
	modeModelCount = "mc"
	modeDdnnf      = "ddnnf"
)

var (
	mode       string
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pbcount FILE",
		Short: "pbcount",
		Long:  `pbcount counts the satisfying assignments of a pseudo-Boolean OPB formula, optionally compiling it to a d-DNNF.`,
		Args:  cobra.ExactArgs(1),

		PreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		RunE: run,
	}

	rootCmd.Flags().StringVar(&mode, "mode", modeModelCount, `one of "mc" (model count only) or "ddnnf" (also compile a d-DNNF)`)
	rootCmd.Flags().StringVar(&outputPath, "output", "", "path to write the compiled d-DNNF to (required when --mode=ddnnf)")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if mode != modeModelCount && mode != modeDdnnf {
		return fmt.Errorf(`--mode must be "mc" or "ddnnf", got %q`, mode)
	}
	if mode == modeDdnnf && outputPath == "" {
		return fmt.Errorf("--output is required when --mode=ddnnf")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	parsed, err := opb.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	formula := pbc.NewFormula(parsed.NumVariables, parsed.Equations)

	var tracer pbc.Tracer = pbc.DefaultTracer{}
	if log.GetLevel() >= log.DebugLevel {
		tracer = pbc.LoggingTracer{Log: log.StandardLogger()}
	}
	search := pbc.NewSearch(formula, pbc.WithTracer(tracer))

	count, root, err := search.Count()
	if err != nil {
		return fmt.Errorf("counting %s: %w", args[0], err)
	}

	log.WithField("stats", search.Stats()).Debug("search finished")
	fmt.Println(count.String())

	if mode == modeDdnnf {
		out, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := ddnnf.Write(out, root); err != nil {
			return fmt.Errorf("writing d-DNNF to %s: %w", outputPath, err)
		}
	}

	return nil
}
