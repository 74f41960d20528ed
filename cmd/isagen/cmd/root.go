package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "isagen",
	Short: "ISA toolchain generator",
	Long:  `isagen loads a declarative instruction-set description and validates, executes, encodes, decodes, or dumps it.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "spec",
		Title: "Spec operations",
	})

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print extra diagnostic detail")
}

// resolveSpecPath validates the CLI arguments and returns the path to the
// spec file, the first positional argument.
func resolveSpecPath(args []string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		return "", fmt.Errorf("no spec file provided")
	}
	if _, err := os.Stat(args[0]); os.IsNotExist(err) {
		return "", fmt.Errorf("spec file does not exist: %s", args[0])
	}
	return args[0], nil
}
