package main

import (
	"github.com/spf13/cobra"

	"eesi/internal/config"
	"eesi/internal/inference"
	"eesi/internal/interval"
	"eesi/internal/report"
)

var fullPropagationCmd = &cobra.Command{
	Use:   "fullpropagation",
	Short: "Print the full value-propagation graph between functions, as Graphviz",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := mustLoadModule()

		errorOnly, err := readErrorOnly()
		if err != nil {
			return err
		}

		result := inference.Run(m, errorOnly, map[string]interval.Constraint{}, config.DefaultErrorCodes())

		out, closeOut, err := openOutput()
		if err != nil {
			return err
		}
		defer closeOut()
		report.FullPropagation(out, m, result.Returned, result)
		return nil
	},
}
