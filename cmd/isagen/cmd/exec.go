package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isatk/isagen/interp"
	"github.com/isatk/isagen/isaio"
)

var execCmd = &cobra.Command{
	Use:     "exec <spec-file> <mnemonic> [operand=value ...]",
	GroupID: "spec",
	Short:   "Execute one instruction's RTL behavior against a fresh state",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExec(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(1)
		}
	},
}

func runExec(cmd *cobra.Command, args []string) error {
	path, err := resolveSpecPath(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("no mnemonic provided")
	}
	mnemonic := args[1]

	spec, err := isaio.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}
	instr := spec.GetInstruction(mnemonic)
	if instr == nil {
		return fmt.Errorf("no such instruction: %s", mnemonic)
	}

	operands, err := parseOperandArgs(args[2:])
	if err != nil {
		return err
	}

	state := interp.NewState(spec)
	if err := interp.Execute(spec, instr, operands, state); err != nil {
		return fmt.Errorf("execute %s: %w", mnemonic, err)
	}

	for _, reg := range spec.Registers {
		rv := state.Registers[reg.Name]
		if rv.Lanes != nil {
			cmd.Printf("%s = %#x\n", reg.Name, rv.Lanes)
			continue
		}
		cmd.Printf("%s = %#x\n", reg.Name, rv.Scalar)
	}
	return nil
}

// parseOperandArgs turns a list of "name=value" strings into an
// operand-name-to-value map, the form Execute expects.
func parseOperandArgs(args []string) (map[string]uint64, error) {
	operands := make(map[string]uint64, len(args))
	for _, arg := range args {
		name, valueStr, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("malformed operand %q, want name=value", arg)
		}
		value, err := strconv.ParseUint(valueStr, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("operand %s: %w", name, err)
		}
		operands[name] = value
	}
	return operands, nil
}
