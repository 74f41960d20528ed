package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isatk/isagen/isaio"
	"github.com/isatk/isagen/validate"
)

var validateCmd = &cobra.Command{
	Use:     "validate <spec-file>",
	GroupID: "spec",
	Short:   "Run every static check against a spec and report diagnostics",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(1)
		}
	},
}

// runValidate loads the spec, runs every validator check group, and prints
// one line per diagnostic. It exits non-zero whenever any diagnostic was
// raised, matching the original toolchain's validate command.
func runValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveSpecPath(args)
	if err != nil {
		return err
	}
	spec, err := isaio.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}

	diagnostics := validate.New(spec).Run()
	if len(diagnostics) == 0 {
		cmd.Println("validation passed, no diagnostics")
		return nil
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	for _, d := range diagnostics {
		if verbose {
			cmd.PrintErrln(fmt.Sprintf("[%s] %s", d.Kind, d.String()))
			continue
		}
		cmd.PrintErrln(d.String())
	}
	return fmt.Errorf("%d diagnostic(s) found", len(diagnostics))
}
