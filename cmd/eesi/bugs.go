package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eesi/internal/config"
	"eesi/internal/missingcheck"
	"eesi/internal/report"
)

var bugsCmd = &cobra.Command{
	Use:   "bugs",
	Short: "Find call sites to specced functions that never check the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := mustLoadModule()

		if flagSpecs == "" {
			return errMissingFlag("--specs")
		}
		specs, err := config.ReadSpecs(flagSpecs)
		if err != nil {
			return err
		}
		errorOnly, err := readErrorOnly()
		if err != nil {
			return err
		}

		rep := missingcheck.Run(m, specs, errorOnly, missingcheck.Options{
			Conflated:   flagConflated,
			MaxDistance: flagMaxDistance,
		})

		out, closeOut, err := openOutput()
		if err != nil {
			return err
		}
		defer closeOut()
		report.Bugs(out, rep)
		return nil
	},
}

func init() {
	bugsCmd.Flags().StringVar(&flagSpecs, "specs", "", "path to a finalized specs file (required)")
	bugsCmd.Flags().StringVar(&flagErrorOnly, "erroronly", "", "path to the error-only function list")
	bugsCmd.Flags().StringVar(&flagDebugFunc, "debugfunction", "", "function name to debug (only checked to exist in the module; adds no extra output)")
	bugsCmd.Flags().BoolVar(&flagConflated, "conflated", false, "omit the per-call-site listing and report only per-callee counts and unchecked sites")
	bugsCmd.Flags().IntVar(&flagMaxDistance, "max-distance", missingcheck.DefaultMaxDistance, "instruction window for the inconsistent-error-handling heuristic")

	specsCmd.Flags().StringVar(&flagErrorOnly, "erroronly", "", "path to the error-only function list")
	specsCmd.Flags().StringVar(&flagInputSpecs, "inputspecs", "", "path to an optional seed specs file")

	errorPropagationCmd.Flags().StringVar(&flagErrorOnly, "erroronly", "", "path to the error-only function list")
	errorPropagationCmd.Flags().StringVar(&flagInputSpecs, "inputspecs", "", "path to an optional seed specs file")

	fullPropagationCmd.Flags().StringVar(&flagErrorOnly, "erroronly", "", "path to the error-only function list")

	for _, c := range []*cobra.Command{specsCmd, bugsCmd, errorPropagationCmd, fullPropagationCmd, definedFunctionsCmd, calledFunctionsCmd} {
		c.Flags().StringVar(&flagOutput, "output", "", "path to write output to (default: stdout)")
	}
}

func errMissingFlag(name string) error {
	return fmt.Errorf("%s is required", name)
}
