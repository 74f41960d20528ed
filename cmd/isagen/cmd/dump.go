package cmd

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/isatk/isagen/isaio"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:     "dump <spec-file>",
	GroupID: "spec",
	Short:   "Print a loaded spec back out, in JSON or a readable Go-value dump",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDump(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "json", `output format: "json" or "spew"`)

	spew.Config = spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true, // maps should be dumped in a deterministic order
		DisablePointerAddresses: true, // don't dump the addresses of pointers
		DisableCapacities:       true, // don't dump capacities of collections
		ContinueOnMethod:        true, // recursion should continue once a custom error or Stringer interface is invoked
		SpewKeys:                true, // if unable to sort map keys then spew keys to strings and sort those
		MaxDepth:                4,    // maximum number of levels to descend into nested data structures
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	path, err := resolveSpecPath(args)
	if err != nil {
		return err
	}
	spec, err := isaio.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}

	switch dumpFormat {
	case "spew":
		spew.Fdump(cmd.OutOrStdout(), spec)
	case "json":
		if err := isaio.Save(cmd.OutOrStdout(), spec); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q, want json or spew", dumpFormat)
	}
	return nil
}
