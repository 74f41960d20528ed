// Command isagen is a thin frontend over the isa/validate/interp/encode
// packages: load a spec, then validate it, execute one instruction against
// it, encode/decode a word, or dump it in a readable form.
package main

import "github.com/isatk/isagen/cmd/isagen/cmd"

func main() {
	cmd.Execute()
}
