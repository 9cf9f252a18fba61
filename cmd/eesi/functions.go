package main

import (
	"github.com/spf13/cobra"

	"eesi/internal/report"
)

var definedFunctionsCmd = &cobra.Command{
	Use:   "definedfunctions",
	Short: "List every function defined (not merely declared) in the module",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := mustLoadModule()
		out, closeOut, err := openOutput()
		if err != nil {
			return err
		}
		defer closeOut()
		report.DefinedFunctions(out, m)
		return nil
	},
}

var calledFunctionsCmd = &cobra.Command{
	Use:   "calledfunctions",
	Short: "List every distinct function name reached by a call instruction",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := mustLoadModule()
		out, closeOut, err := openOutput()
		if err != nil {
			return err
		}
		defer closeOut()
		report.CalledFunctions(out, m)
		return nil
	},
}
