package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/isatk/isagen/encode"
	"github.com/isatk/isagen/isaio"
)

var decodeCmd = &cobra.Command{
	Use:     "decode <spec-file> <mnemonic> <word>",
	GroupID: "spec",
	Short:   "Decode a format word into its operand values",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDecode(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(1)
		}
	},
}

func runDecode(cmd *cobra.Command, args []string) error {
	path, err := resolveSpecPath(args)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("usage: decode <spec-file> <mnemonic> <word>")
	}
	mnemonic := args[1]
	word, err := strconv.ParseUint(args[2], 0, 64)
	if err != nil {
		return fmt.Errorf("word: %w", err)
	}

	spec, err := isaio.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}
	instr := spec.GetInstruction(mnemonic)
	if instr == nil {
		return fmt.Errorf("no such instruction: %s", mnemonic)
	}

	if !encode.Matches(spec, instr, word) {
		cmd.PrintErrln(fmt.Sprintf("warning: %#x does not match %s's fixed encoding bits", word, mnemonic))
	}

	operands, err := encode.Decode(spec, instr, word)
	if err != nil {
		return err
	}
	for _, name := range instr.Operands() {
		cmd.Printf("%s = %#x\n", name, operands[name])
	}
	return nil
}
