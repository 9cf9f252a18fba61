package ir

// Builder assembles a Module by hand. The real bitcode-to-IR reader is an
// external collaborator; Builder exists only so tests in this
// module can construct small IR fixtures without that collaborator.
type Builder struct {
	mod *Module
}

// NewBuilder starts a new, empty module.
func NewBuilder() *Builder {
	return &Builder{mod: &Module{}}
}

// Module returns the module assembled so far.
func (b *Builder) Module() *Module { return b.mod }

// Func declares a function and adds it to the module.
func (b *Builder) Func(name string, void bool) *Function {
	f := &Function{Name: name, Void: void}
	b.mod.Functions = append(b.mod.Functions, f)
	return f
}

// Block appends a new, empty basic block to f.
func (b *Builder) Block(f *Function, name string) *BasicBlock {
	blk := &BasicBlock{Name: name, Func: f}
	f.Blocks = append(f.Blocks, blk)
	if f.Entry == nil {
		f.Entry = blk
	}
	return blk
}

// Link records a successor edge between two blocks of the same function.
func Link(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

// Append adds a non-terminator instruction to blk.
func Append(blk *BasicBlock, inst Instruction) {
	blk.Instructions = append(blk.Instructions, inst)
}

// Terminate sets blk's terminator and wires successor/predecessor edges.
func Terminate(blk *BasicBlock, term Terminator) {
	blk.Term = term
	for _, s := range term.Successors() {
		if s == nil {
			continue
		}
		Link(blk, s)
	}
}
