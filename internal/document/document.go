// Package document is the snapshot model the merge core works on: an ordered
// list of named parameter blocks read out of a talk page, plus the edit
// instructions the core emits instead of mutating a live parse tree.
package document

import "strings"

// Param is one key/value pair inside a block. Order is significant.
type Param struct {
	Key   string
	Value string
}

// Block is a named template with its ordered parameter list.
type Block struct {
	Name   string
	Params []Param
}

// NormalizedName lowercases the block name and strips a leading template
// namespace prefix, which is how alias matching is done everywhere.
func (b Block) NormalizedName() string {
	name := strings.TrimSpace(b.Name)
	name = strings.TrimPrefix(name, "Template:")
	name = strings.TrimPrefix(name, "template:")
	return strings.ToLower(name)
}

// Get returns the trimmed value for key and whether the key is present.
func (b Block) Get(key string) (string, bool) {
	for _, p := range b.Params {
		if p.Key == key {
			return strings.TrimSpace(p.Value), true
		}
	}
	return "", false
}

// Document is an ordered snapshot of the blocks on one page.
type Document struct {
	Blocks []Block
}

// EditOp enumerates the instructions the core may emit.
type EditOp int

const (
	// OpRename changes a block's name.
	OpRename EditOp = iota
	// OpReplaceParams replaces a block's full parameter list, preserving the
	// given order.
	OpReplaceParams
	// OpRemove detaches a block from the document.
	OpRemove
	// OpInsertBefore inserts a new block immediately before the target.
	OpInsertBefore
)

// Edit is one instruction against a block, addressed by its index in the
// snapshot the instructions were computed from.
type Edit struct {
	Op     EditOp
	Index  int
	Name   string  // OpRename, OpInsertBefore
	Params []Param // OpReplaceParams, OpInsertBefore
}

// Apply replays edits onto a copy of the document and returns the result.
// Indexes always refer to the original snapshot, so removals and insertions
// do not shift later instructions.
func (d Document) Apply(edits []Edit) Document {
	type slot struct {
		block   Block
		removed bool
		before  []Block
	}

	slots := make([]slot, len(d.Blocks))
	for i, b := range d.Blocks {
		slots[i] = slot{block: b}
	}

	for _, e := range edits {
		if e.Index < 0 || e.Index >= len(slots) {
			continue
		}
		s := &slots[e.Index]
		switch e.Op {
		case OpRename:
			s.block.Name = e.Name
		case OpReplaceParams:
			s.block.Params = append([]Param(nil), e.Params...)
		case OpRemove:
			s.removed = true
		case OpInsertBefore:
			s.before = append(s.before, Block{Name: e.Name, Params: append([]Param(nil), e.Params...)})
		}
	}

	var out Document
	for _, s := range slots {
		out.Blocks = append(out.Blocks, s.before...)
		if !s.removed {
			out.Blocks = append(out.Blocks, s.block)
		}
	}
	return out
}
