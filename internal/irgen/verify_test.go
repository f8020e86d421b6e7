package irgen

import (
	"errors"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"

	"spice/internal/diag"
)

func expectIRError(t *testing.T, err error, want diag.Code) {
	t.Helper()
	var ierr *diag.IRError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IR error, got %v", err)
	}
	if ierr.Kind() != want {
		t.Fatalf("expected %v, got %v: %v", want, ierr.Kind(), err)
	}
}

func TestVerifyMissingTerminator(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunc("broken", lltypes.I32)
	f.NewBlock("entry")
	expectIRError(t, Verify(m), diag.IRInvalidFunction)
}

func TestVerifyDuplicateSymbol(t *testing.T) {
	m := ir.NewModule()
	m.NewGlobalDef("x", constant.NewInt(lltypes.I32, 0))
	m.NewFunc("x", lltypes.Void)
	expectIRError(t, Verify(m), diag.IRInvalidModule)
}

func TestVerifyPhiPredecessors(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunc("pick", lltypes.I32, ir.NewParam("c", lltypes.I1))
	entry := f.NewBlock("entry")
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	join := f.NewBlock("join")
	entry.NewCondBr(f.Params[0], left, right)
	left.NewBr(join)
	right.NewBr(join)
	phi := join.NewPhi(ir.NewIncoming(constant.NewInt(lltypes.I32, 1), left))
	join.NewRet(phi)
	expectIRError(t, Verify(m), diag.IRInvalidFunction)

	phi.Incs = append(phi.Incs, ir.NewIncoming(constant.NewInt(lltypes.I32, 2), right))
	if err := Verify(m); err != nil {
		t.Fatalf("valid function rejected: %v", err)
	}
}

func TestVerifyPhiAfterInstruction(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunc("late", lltypes.I32)
	entry := f.NewBlock("entry")
	next := f.NewBlock("next")
	entry.NewBr(next)
	sum := next.NewAdd(constant.NewInt(lltypes.I32, 1), constant.NewInt(lltypes.I32, 2))
	phi := next.NewPhi(ir.NewIncoming(sum, entry))
	next.NewRet(phi)
	expectIRError(t, Verify(m), diag.IRInvalidFunction)
}

func TestVerifyForeignBranch(t *testing.T) {
	m := ir.NewModule()
	a := m.NewFunc("a", lltypes.Void)
	b := m.NewFunc("b", lltypes.Void)
	other := b.NewBlock("other")
	other.NewRet(nil)
	a.NewBlock("entry").NewBr(other)
	expectIRError(t, Verify(m), diag.IRInvalidFunction)
}

func TestVerifyDeclarationsPass(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunc("printf", lltypes.I32, ir.NewParam("", lltypes.I8Ptr))
	f.Sig.Variadic = true
	if err := Verify(m); err != nil {
		t.Fatalf("declarations should verify: %v", err)
	}
}
