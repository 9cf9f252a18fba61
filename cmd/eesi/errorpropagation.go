package main

import (
	"github.com/spf13/cobra"

	"eesi/internal/config"
	"eesi/internal/inference"
	"eesi/internal/report"
)

var errorPropagationCmd = &cobra.Command{
	Use:   "errorpropagation",
	Short: "Print the error-propagation graph between functions, as Graphviz",
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
		report.ErrorPropagation(out, result)
		return nil
	},
}
