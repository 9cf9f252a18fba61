package main

import (
	"github.com/spf13/cobra"

	"eesi/internal/config"
	"eesi/internal/diag"
	"eesi/internal/inference"
	"eesi/internal/interval"
	"eesi/internal/report"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Print the inferred error specification for every function",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := mustLoadModule()

		errorOnly, err := readErrorOnly()
		if err != nil {
			return err
		}
		seed, err := readOptionalSeedSpecs(flagInputSpecs)
		if err != nil {
			return err
		}

		result := inference.Run(m, errorOnly, seed, config.DefaultErrorCodes())

		out, closeOut, err := openOutput()
		if err != nil {
			return err
		}
		defer closeOut()
		report.Specs(out, result)
		return nil
	},
}

func readErrorOnly() (map[string]bool, error) {
	if flagErrorOnly == "" {
		diag.Soundness("no --erroronly file given; treating the error-only set as empty")
		return map[string]bool{}, nil
	}
	return config.ReadErrorOnly(flagErrorOnly)
}

// readOptionalSeedSpecs reads the two-field seed-specs file passed via
// --inputspecs, used to pre-seed inference. An empty path means no seed
// was given.
func readOptionalSeedSpecs(path string) (map[string]interval.Constraint, error) {
	if path == "" {
		return map[string]interval.Constraint{}, nil
	}
	return config.ReadSeedSpecs(path)
}
