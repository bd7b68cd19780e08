package cpu

import (
	"iter"
	"log"
)

// Label is a named code address.
type Label struct {
	Name    string
	Address uint64
	Defined bool
}

// Fixup is a code word to patch with a label address once it is known.
type Fixup struct {
	Label int // Index into the label table.
	Patch int // Offset of the code word to patch.
}

// LabelTable maps label names to code addresses, deferring references to
// labels not yet defined.
type LabelTable struct {
	Verbose bool // If set, logs label redefinitions.
	Strict  bool // If set, redefining a label is an error.

	Labels []Label
	Fixups []Fixup
}

// Reset clears all labels and fixups.
func (lt *LabelTable) Reset() {
	lt.Labels = lt.Labels[:0]
	lt.Fixups = lt.Fixups[:0]
}

// find returns the index of a named label, or -1.
func (lt *LabelTable) find(name string) int {
	for n := range lt.Labels {
		if lt.Labels[n].Name == name {
			return n
		}
	}
	return -1
}

// Declare inserts a label, or overwrites an existing label of the same name.
func (lt *LabelTable) Declare(name string, address uint64, defined bool) (err error) {
	n := lt.find(name)
	if n < 0 {
		lt.Labels = append(lt.Labels, Label{Name: name, Address: address, Defined: defined})
		return
	}

	label := &lt.Labels[n]
	if !defined {
		if !label.Defined {
			label.Address = address
		}
		return
	}

	if label.Defined {
		if lt.Strict {
			err = ErrLabelDuplicate
			return
		}
		if lt.Verbose {
			log.Printf("label %v: redefined from %d to %d", name, label.Address, address)
		}
	}

	label.Address = address
	label.Defined = true

	return
}

// Resolve returns the address of a defined label. Otherwise a fixup is
// recorded against code offset patch and a placeholder of 0 is returned.
func (lt *LabelTable) Resolve(name string, patch int) (address uint64) {
	n := lt.find(name)
	if n >= 0 && lt.Labels[n].Defined {
		return lt.Labels[n].Address
	}

	if n < 0 {
		n = len(lt.Labels)
		lt.Labels = append(lt.Labels, Label{Name: name})
	}

	lt.Fixups = append(lt.Fixups, Fixup{Label: n, Patch: patch})

	return 0
}

// ApplyFixups patches every fixup location in code with its label address.
func (lt *LabelTable) ApplyFixups(code []Word) (err error) {
	for _, fixup := range lt.Fixups {
		label := &lt.Labels[fixup.Label]
		if !label.Defined {
			err = ErrLabelUndefined(label.Name)
			return
		}
		if fixup.Patch < 0 || fixup.Patch >= len(code) {
			err = ErrIpRange
			return
		}
		code[fixup.Patch] = Word(label.Address)
	}

	lt.Fixups = lt.Fixups[:0]

	return
}

// Defined returns an iterator over the defined labels and their addresses.
func (lt *LabelTable) Defined() iter.Seq2[string, uint64] {
	return func(yield func(name string, address uint64) bool) {
		for _, label := range lt.Labels {
			if !label.Defined {
				continue
			}
			if !yield(label.Name, label.Address) {
				return
			}
		}
	}
}
