// SPDX-License-Identifier: Apache-2.0

// Command eesi infers error specifications for compiled functions and
// flags call sites that never check them.
package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "eesi",
	Short: "Infer error specifications from compiled IR and find unchecked call sites",
}

var (
	flagBitcode     string
	flagOutput      string
	flagErrorOnly   string
	flagInputSpecs  string
	flagSpecs       string
	flagDebugFunc   string
	flagConflated   bool
	flagMaxDistance int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBitcode, "bitcode", "", "path to the compiled IR module")
	rootCmd.MarkPersistentFlagRequired("bitcode")

	rootCmd.AddCommand(specsCmd, bugsCmd, errorPropagationCmd, fullPropagationCmd, definedFunctionsCmd, calledFunctionsCmd)
}

// openOutput returns flagOutput, or os.Stdout when it is unset.
func openOutput() (*os.File, func(), error) {
	if flagOutput == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(flagOutput)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
