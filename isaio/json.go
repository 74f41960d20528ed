// Package isaio loads and saves an isa.Spec as JSON, the on-disk form of
// the model-producer contract: any tool that emits a document shaped like
// the structs below can feed this toolchain.
package isaio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"

	"github.com/isatk/isagen/isa"
)

// document is the on-disk shape of a Spec. Field names are snake_case,
// matching the attribute names the model-producer side (an ISA DSL
// compiler external to this toolchain) already uses.
type document struct {
	Name       string         `json:"name"`
	WordSize   int            `json:"word_size"`
	Endianness string         `json:"endianness"`

	Registers          []registerDoc          `json:"registers,omitempty"`
	VirtualRegisters   []virtualRegisterDoc    `json:"virtual_registers,omitempty"`
	RegisterAliases    []aliasDoc              `json:"register_aliases,omitempty"`
	Formats            []formatDoc             `json:"formats,omitempty"`
	BundleFormats      []bundleFormatDoc       `json:"bundle_formats,omitempty"`
	Instructions       []instructionDoc        `json:"instructions,omitempty"`
	InstructionAliases []instructionAliasDoc   `json:"instruction_aliases,omitempty"`
}

type fieldDoc struct {
	Name          string `json:"name"`
	MSB           int    `json:"msb"`
	LSB           int    `json:"lsb"`
	HasConstant   bool   `json:"has_constant,omitempty"`
	ConstantValue uint64 `json:"constant_value,omitempty"`
}

type registerDoc struct {
	Name   string     `json:"name"`
	Kind   string     `json:"kind"`
	Width  int        `json:"width"`
	Count  int        `json:"count,omitempty"`
	Fields []fieldDoc `json:"fields,omitempty"`
}

// Index is -1 for "whole register", matching isa's own sentinel, so it is
// never omitted even when the field is absent-looking (0 is a real indexed
// entry, not a default).
type virtualRegisterComponentDoc struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

type virtualRegisterDoc struct {
	Name       string                        `json:"name"`
	Width      int                           `json:"width"`
	Components []virtualRegisterComponentDoc `json:"components"`
}

// Index is -1 for "whole register"; see virtualRegisterComponentDoc.
type aliasDoc struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Index  int    `json:"index"`
}

type formatDoc struct {
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Fields []fieldDoc `json:"fields,omitempty"`
}

type slotDoc struct {
	Name string `json:"name"`
	MSB  int    `json:"msb"`
	LSB  int    `json:"lsb"`
}

type bundleFormatDoc struct {
	Name           string     `json:"name"`
	Width          int        `json:"width"`
	Slots          []slotDoc  `json:"slots,omitempty"`
	Discriminators []fieldDoc `json:"discriminators,omitempty"`
}

type operandSpecDoc struct {
	Name  string `json:"name"`
	Field string `json:"field,omitempty"`
}

type bundleSlotRefDoc struct {
	Slot        string `json:"slot"`
	Instruction string `json:"instruction"`
}

type instructionDoc struct {
	Mnemonic         string            `json:"mnemonic"`
	Format           string            `json:"format,omitempty"`
	OperandNames     []string          `json:"operand_names,omitempty"`
	OperandSpecs     []operandSpecDoc  `json:"operand_specs,omitempty"`
	Encoding         map[string]uint64 `json:"encoding,omitempty"`
	Behavior         *rtlBlockDoc      `json:"behavior,omitempty"`
	ExternalBehavior bool              `json:"external_behavior,omitempty"`
	IsBundle         bool              `json:"is_bundle,omitempty"`
	BundleFormat     string            `json:"bundle_format,omitempty"`
	Slots            []bundleSlotRefDoc `json:"slots,omitempty"`
}

type instructionAliasDoc struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Load reads an ISA document from r and builds a *isa.Spec.
func Load(r io.Reader) (*isa.Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("isaio: read: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("isaio: decode: %w", err)
	}
	return fromDocument(&doc)
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) (*isa.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("isaio: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Save writes spec to w as JSON.
func Save(w io.Writer, spec *isa.Spec) error {
	data, err := json.Marshal(toDocument(spec))
	if err != nil {
		return fmt.Errorf("isaio: encode: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// SaveFile writes spec to path as JSON, creating or truncating it.
func SaveFile(path string, spec *isa.Spec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("isaio: create %s: %w", path, err)
	}
	defer f.Close()
	return Save(f, spec)
}

func toFieldDoc(f isa.Field) fieldDoc {
	return fieldDoc{Name: f.Name, MSB: f.MSB, LSB: f.LSB}
}

func toFormatFieldDoc(f isa.FormatField) fieldDoc {
	return fieldDoc{Name: f.Name, MSB: f.MSB, LSB: f.LSB, HasConstant: f.HasConstant, ConstantValue: f.ConstantValue}
}

func fromFieldDoc(d fieldDoc) isa.Field {
	return isa.Field{Name: d.Name, MSB: d.MSB, LSB: d.LSB}
}

func fromFormatFieldDoc(d fieldDoc) isa.FormatField {
	return isa.FormatField{Name: d.Name, MSB: d.MSB, LSB: d.LSB, HasConstant: d.HasConstant, ConstantValue: d.ConstantValue}
}

func toDocument(spec *isa.Spec) *document {
	doc := &document{
		Name:       spec.Name,
		WordSize:   spec.Properties.WordSize,
		Endianness: spec.Properties.Endianness,
	}

	for _, r := range spec.Registers {
		fields := make([]fieldDoc, len(r.Fields))
		for i, f := range r.Fields {
			fields[i] = toFieldDoc(f)
		}
		doc.Registers = append(doc.Registers, registerDoc{
			Name: r.Name, Kind: string(r.Kind), Width: r.Width, Count: r.Count, Fields: fields,
		})
	}

	for _, vr := range spec.VirtualRegisters {
		comps := make([]virtualRegisterComponentDoc, len(vr.Components))
		for i, c := range vr.Components {
			comps[i] = virtualRegisterComponentDoc{Register: c.Register, Index: c.Index}
		}
		doc.VirtualRegisters = append(doc.VirtualRegisters, virtualRegisterDoc{Name: vr.Name, Width: vr.Width, Components: comps})
	}

	for _, a := range spec.RegisterAliases {
		doc.RegisterAliases = append(doc.RegisterAliases, aliasDoc{Name: a.Name, Target: a.Target, Index: a.Index})
	}

	for _, f := range spec.Formats {
		fields := make([]fieldDoc, len(f.Fields))
		for i, fld := range f.Fields {
			fields[i] = toFormatFieldDoc(fld)
		}
		doc.Formats = append(doc.Formats, formatDoc{Name: f.Name, Width: f.Width, Fields: fields})
	}

	for _, b := range spec.BundleFormats {
		slots := make([]slotDoc, len(b.Slots))
		for i, s := range b.Slots {
			slots[i] = slotDoc{Name: s.Name, MSB: s.MSB, LSB: s.LSB}
		}
		discs := make([]fieldDoc, len(b.Discriminators))
		for i, d := range b.Discriminators {
			discs[i] = toFormatFieldDoc(d)
		}
		doc.BundleFormats = append(doc.BundleFormats, bundleFormatDoc{Name: b.Name, Width: b.Width, Slots: slots, Discriminators: discs})
	}

	for _, instr := range spec.Instructions {
		var specs []operandSpecDoc
		for _, s := range instr.OperandSpecs {
			specs = append(specs, operandSpecDoc{Name: s.Name, Field: s.Field})
		}
		var slots []bundleSlotRefDoc
		for _, s := range instr.Slots {
			slots = append(slots, bundleSlotRefDoc{Slot: s.Slot, Instruction: s.Instruction})
		}
		var behavior *rtlBlockDoc
		if instr.HasBehavior() {
			b := toRTLBlock(instr.Behavior)
			behavior = &b
		}
		doc.Instructions = append(doc.Instructions, instructionDoc{
			Mnemonic:         instr.Mnemonic,
			Format:           instr.Format,
			OperandNames:     instr.OperandNames,
			OperandSpecs:     specs,
			Encoding:         instr.Encoding,
			Behavior:         behavior,
			ExternalBehavior: instr.ExternalBehavior,
			IsBundle:         instr.IsBundle,
			BundleFormat:     instr.BundleFormat,
			Slots:            slots,
		})
	}

	for _, a := range spec.InstructionAliases {
		doc.InstructionAliases = append(doc.InstructionAliases, instructionAliasDoc{Name: a.Name, Target: a.Target})
	}

	return doc
}

func fromDocument(doc *document) (*isa.Spec, error) {
	registers := make([]isa.Register, len(doc.Registers))
	for i, r := range doc.Registers {
		fields := make([]isa.Field, len(r.Fields))
		for j, f := range r.Fields {
			fields[j] = fromFieldDoc(f)
		}
		registers[i] = isa.Register{Name: r.Name, Kind: isa.Kind(r.Kind), Width: r.Width, Count: r.Count, Fields: fields}
	}

	virtuals := make([]isa.VirtualRegister, len(doc.VirtualRegisters))
	for i, vr := range doc.VirtualRegisters {
		comps := make([]isa.VirtualRegisterComponent, len(vr.Components))
		for j, c := range vr.Components {
			comps[j] = isa.VirtualRegisterComponent{Register: c.Register, Index: c.Index}
		}
		virtuals[i] = isa.VirtualRegister{Name: vr.Name, Width: vr.Width, Components: comps}
	}

	aliases := make([]isa.RegisterAlias, len(doc.RegisterAliases))
	for i, a := range doc.RegisterAliases {
		aliases[i] = isa.RegisterAlias{Name: a.Name, Target: a.Target, Index: a.Index}
	}

	formats := make([]isa.Format, len(doc.Formats))
	for i, f := range doc.Formats {
		fields := make([]isa.FormatField, len(f.Fields))
		for j, fld := range f.Fields {
			fields[j] = fromFormatFieldDoc(fld)
		}
		formats[i] = isa.Format{Name: f.Name, Width: f.Width, Fields: fields}
	}

	bundles := make([]isa.BundleFormat, len(doc.BundleFormats))
	for i, b := range doc.BundleFormats {
		slots := make([]isa.Slot, len(b.Slots))
		for j, s := range b.Slots {
			slots[j] = isa.Slot{Name: s.Name, MSB: s.MSB, LSB: s.LSB}
		}
		discs := make([]isa.FormatField, len(b.Discriminators))
		for j, d := range b.Discriminators {
			discs[j] = fromFormatFieldDoc(d)
		}
		bundles[i] = isa.BundleFormat{Name: b.Name, Width: b.Width, Slots: slots, Discriminators: discs}
	}

	instructions := make([]isa.Instruction, len(doc.Instructions))
	for i, d := range doc.Instructions {
		var specs []isa.OperandSpec
		for _, s := range d.OperandSpecs {
			specs = append(specs, isa.OperandSpec{Name: s.Name, Field: s.Field})
		}
		var slots []isa.BundleSlotRef
		for _, s := range d.Slots {
			slots = append(slots, isa.BundleSlotRef{Slot: s.Slot, Instruction: s.Instruction})
		}
		var block rtlBlockDoc
		if d.Behavior != nil {
			block = *d.Behavior
		}
		rtlBehavior, err := fromRTLBlock(block)
		if err != nil {
			return nil, fmt.Errorf("isaio: instruction %s: %w", d.Mnemonic, err)
		}
		instructions[i] = isa.Instruction{
			Mnemonic:         d.Mnemonic,
			Format:           d.Format,
			OperandNames:     d.OperandNames,
			OperandSpecs:     specs,
			Encoding:         isa.Encoding(d.Encoding),
			Behavior:         rtlBehavior,
			ExternalBehavior: d.ExternalBehavior,
			IsBundle:         d.IsBundle,
			BundleFormat:     d.BundleFormat,
			Slots:            slots,
		}
	}

	instrAliases := make([]isa.InstructionAlias, len(doc.InstructionAliases))
	for i, a := range doc.InstructionAliases {
		instrAliases[i] = isa.InstructionAlias{Name: a.Name, Target: a.Target}
	}

	return isa.New(doc.Name, isa.Properties{WordSize: doc.WordSize, Endianness: doc.Endianness},
		registers, virtuals, aliases, formats, bundles, instructions, instrAliases), nil
}
