package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isatk/isagen/encode"
	"github.com/isatk/isagen/isaio"
)

var encodeStrict bool

var encodeCmd = &cobra.Command{
	Use:     "encode <spec-file> <mnemonic> [operand=value ...]",
	GroupID: "spec",
	Short:   "Encode one instruction into a format word",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runEncode(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeStrict, "strict", false, "fail instead of truncating an operand that overflows its field")
}

func runEncode(cmd *cobra.Command, args []string) error {
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

	word, err := encode.Encode(spec, instr, operands, encode.Options{Strict: encodeStrict})
	if err != nil {
		return err
	}

	format := spec.GetFormat(instr.Format)
	width := 32
	if format != nil {
		width = format.Width
	}
	// Zero-pad to the format's width in hex digits; with '#', printf's '*'
	// width counts digits only and the "0x" prefix is added in front.
	cmd.Printf("%#0*x\n", (width+3)/4, word)
	return nil
}
