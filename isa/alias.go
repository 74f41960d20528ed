package isa

// RegisterAlias is a second name bound to an existing register, optionally
// to one indexed entry of a register file. It resolves transparently in
// encoding, assembly syntax, and RTL references.
type RegisterAlias struct {
	Name   string
	Target string
	Index  int // -1 means "whole register"
}

// Indexed reports whether the alias targets one entry of a register file.
func (a RegisterAlias) Indexed() bool {
	return a.Index >= 0
}
