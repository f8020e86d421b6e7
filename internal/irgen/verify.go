package irgen

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"spice/internal/diag"
)

// Verify checks the structural rules the generator relies on: every block
// ends in a terminator, branches stay inside their function, PHIs lead their
// block and list exactly its predecessors, and symbol names are unique.
func Verify(m *ir.Module) error {
	names := make(map[string]bool, len(m.Funcs)+len(m.Globals))
	for _, g := range m.Globals {
		if names[g.Name()] {
			return invalidModule("duplicate symbol @%s", g.Name())
		}
		names[g.Name()] = true
	}
	for _, f := range m.Funcs {
		if names[f.Name()] {
			return invalidModule("duplicate symbol @%s", f.Name())
		}
		names[f.Name()] = true
		if err := verifyFunc(f); err != nil {
			return err
		}
	}
	return nil
}

func verifyFunc(f *ir.Func) error {
	if len(f.Blocks) == 0 {
		return nil
	}
	own := make(map[*ir.Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		own[b] = true
	}
	preds := make(map[*ir.Block][]*ir.Block)
	for _, b := range f.Blocks {
		if b.Term == nil {
			return invalidFunction(f, "block %%%s has no terminator", b.Name())
		}
		for _, succ := range b.Term.Succs() {
			if !own[succ] {
				return invalidFunction(f, "block %%%s branches to %%%s outside the function", b.Name(), succ.Name())
			}
			preds[succ] = append(preds[succ], b)
		}
	}
	for _, b := range f.Blocks {
		leading := true
		for _, inst := range b.Insts {
			phi, ok := inst.(*ir.InstPhi)
			if !ok {
				leading = false
				continue
			}
			if !leading {
				return invalidFunction(f, "phi %s is not at the top of %%%s", phi.Ident(), b.Name())
			}
			if err := verifyPhi(f, b, phi, preds[b]); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyPhi(f *ir.Func, b *ir.Block, phi *ir.InstPhi, preds []*ir.Block) error {
	if len(phi.Incs) != len(preds) {
		return invalidFunction(f, "phi %s in %%%s has %d incoming values for %d predecessors", phi.Ident(), b.Name(), len(phi.Incs), len(preds))
	}
	for _, inc := range phi.Incs {
		found := false
		for _, p := range preds {
			if inc.Pred == p {
				found = true
				break
			}
		}
		if !found {
			return invalidFunction(f, "phi %s in %%%s names a block that is no predecessor", phi.Ident(), b.Name())
		}
	}
	return nil
}

func invalidFunction(f *ir.Func, format string, args ...any) error {
	return diag.NewIRError(noLoc, diag.IRInvalidFunction, fmt.Sprintf("@%s: ", f.Name())+fmt.Sprintf(format, args...))
}

func invalidModule(format string, args ...any) error {
	return diag.NewIRError(noLoc, diag.IRInvalidModule, fmt.Sprintf(format, args...))
}
