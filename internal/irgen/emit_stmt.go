package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// emitStmts lowers a statement list. Code after a return, break, continue or
// fallthrough is unreachable and skipped.
func (fe *funcEmitter) emitStmts(scope *symbols.Scope, stmts []ast.Stmt) {
	for _, s := range stmts {
		if fe.terminated() {
			return
		}
		fe.emitStmt(scope, s)
	}
}

// emitScoped lowers the statements of a nested scope and destroys its struct
// locals when control reaches the end.
func (fe *funcEmitter) emitScoped(scope *symbols.Scope, stmts []ast.Stmt) {
	fe.openScope()
	fe.emitStmts(scope, stmts)
	fe.closeScope()
}

func (fe *funcEmitter) emitStmt(scope *symbols.Scope, s ast.Stmt) {
	fe.loc = s.Pos()
	switch s := s.(type) {
	case *ast.Block:
		fe.emitScoped(fe.child(scope, symbols.ScopeBlock, s.Loc), s.Stmts)
	case *ast.DeclStmt:
		fe.emitDecl(scope, s)
	case *ast.ExprStmt:
		fe.emitExpr(scope, s.X)
	case *ast.IfStmt:
		fe.emitIf(scope, s)
	case *ast.WhileStmt:
		fe.emitWhile(scope, s)
	case *ast.DoWhileStmt:
		fe.emitDoWhile(scope, s)
	case *ast.ForStmt:
		fe.emitFor(scope, s)
	case *ast.ForeachStmt:
		fe.emitForeach(scope, s)
	case *ast.SwitchStmt:
		fe.emitSwitch(scope, s)
	case *ast.FallthroughStmt:
		if fe.fallthroughTo == nil {
			fe.e.fail(s.Loc, diag.IRBranchNotFound, "fallthrough without a following case")
		}
		fe.cleanupFrom(fe.fallDepth, nil)
		fe.cur.NewBr(fe.fallthroughTo)
	case *ast.BreakStmt:
		l := fe.loopAt(s.Count)
		fe.cleanupFrom(l.depth, nil)
		fe.cur.NewBr(l.brk)
	case *ast.ContinueStmt:
		l := fe.loopAt(s.Count)
		fe.cleanupFrom(l.depth, nil)
		fe.cur.NewBr(l.cont)
	case *ast.ReturnStmt:
		fe.emitReturnStmt(scope, s)
	case *ast.UnsafeStmt:
		fe.emitScoped(fe.child(scope, symbols.ScopeUnsafe, s.Loc), s.Body.Stmts)
	case *ast.AssertStmt:
		fe.emitAssert(scope, s)
	default:
		fe.e.fail(s.Pos(), diag.IRComingSoon, "statement %T is not supported", s)
	}
}

// loopAt returns the n-th enclosing loop, counting from the innermost.
func (fe *funcEmitter) loopAt(n int) loopTarget {
	if n < 1 || n > len(fe.loops) {
		fe.e.fail(fe.loc, diag.IRBranchNotFound, "no loop %d levels up", n)
	}
	return fe.loops[len(fe.loops)-n]
}

// loopBody lowers a loop body. Locals of the body are destroyed at the end
// of every iteration and on break and continue.
func (fe *funcEmitter) loopBody(scope *symbols.Scope, body *ast.Block, brk, cont *ir.Block) {
	fe.loops = append(fe.loops, loopTarget{brk: brk, cont: cont, depth: len(fe.cleanups)})
	fe.emitScoped(scope, body.Stmts)
	fe.loops = fe.loops[:len(fe.loops)-1]
}

// emitDecl reserves the slot of a local and initializes it. Reference
// locals bind to the address of their value.
func (fe *funcEmitter) emitDecl(scope *symbols.Scope, s *ast.DeclStmt) {
	entry := fe.lookup(scope, s.Name)
	t := entry.Type.Type
	if t.IsRef() {
		if s.Value == nil {
			fe.e.fail(s.Loc, diag.IRWrongType, "reference '%s' without a value", s.Name)
		}
		target := fe.resolveAddress(fe.emitExpr(scope, s.Value))
		slot := fe.alloca(fe.e.llType(t), s.Name)
		fe.cur.NewStore(target, slot)
		entry.Address = slot
		return
	}
	slot := fe.alloca(fe.e.llType(t), s.Name)
	entry.Address = slot
	switch {
	case s.Value == nil && t.Is(types.TyStruct):
		fe.construct(t, slot)
	case s.Value == nil:
		fe.store(constant.NewZeroInitializer(slot.ElemType), slot, entry)
	case t.Is(types.TyStruct):
		r := fe.emitExpr(scope, s.Value)
		if r.lvalue() && s.Value.Kind != ast.ExprStructLit {
			fe.copyInto(t, slot, fe.readAddress(r))
		} else {
			fe.store(fe.resolveValue(r), slot, entry)
		}
	default:
		fe.store(fe.rvalue(scope, s.Value, t), slot, entry)
	}
	if t.Is(types.TyStruct) {
		fe.own(entry)
	}
}

func (fe *funcEmitter) emitIf(scope *symbols.Scope, s *ast.IfStmt) {
	inner := fe.child(scope, symbols.ScopeIf, s.Loc)
	cond := fe.cond(inner, s.Cond)
	thenB := fe.newBlock("if.then")
	endB := fe.newBlock("if.end")
	elseB := endB
	if s.Else != nil {
		elseB = fe.newBlock("if.else")
	}
	fe.cur.NewCondBr(cond, thenB, elseB)

	fe.enter(thenB)
	fe.emitScoped(inner, s.Then.Stmts)
	fe.br(endB)

	if s.Else != nil {
		fe.enter(elseB)
		switch e := s.Else.(type) {
		case *ast.Block:
			fe.emitScoped(fe.child(scope, symbols.ScopeElse, e.Loc), e.Stmts)
		case *ast.IfStmt:
			fe.loc = e.Loc
			fe.emitIf(scope, e)
		}
		fe.br(endB)
	}
	fe.enter(endB)
}

func (fe *funcEmitter) emitWhile(scope *symbols.Scope, s *ast.WhileStmt) {
	inner := fe.child(scope, symbols.ScopeWhile, s.Loc)
	condB := fe.newBlock("while.cond")
	bodyB := fe.newBlock("while.body")
	endB := fe.newBlock("while.end")
	fe.cur.NewBr(condB)

	fe.enter(condB)
	fe.cur.NewCondBr(fe.cond(inner, s.Cond), bodyB, endB)

	fe.enter(bodyB)
	fe.loopBody(inner, s.Body, endB, condB)
	fe.br(condB)
	fe.enter(endB)
}

func (fe *funcEmitter) emitDoWhile(scope *symbols.Scope, s *ast.DoWhileStmt) {
	inner := fe.child(scope, symbols.ScopeDo, s.Loc)
	bodyB := fe.newBlock("do.body")
	condB := fe.newBlock("do.cond")
	endB := fe.newBlock("do.end")
	fe.cur.NewBr(bodyB)

	fe.enter(bodyB)
	fe.loopBody(inner, s.Body, endB, condB)
	fe.br(condB)

	fe.enter(condB)
	fe.cur.NewCondBr(fe.cond(inner, s.Cond), bodyB, endB)
	fe.enter(endB)
}

func (fe *funcEmitter) emitFor(scope *symbols.Scope, s *ast.ForStmt) {
	inner := fe.child(scope, symbols.ScopeFor, s.Loc)
	fe.openScope()
	defer fe.closeScope()
	if s.Init != nil {
		fe.emitStmt(inner, s.Init)
	}
	condB := fe.newBlock("for.cond")
	bodyB := fe.newBlock("for.body")
	stepB := fe.newBlock("for.step")
	endB := fe.newBlock("for.end")
	fe.cur.NewBr(condB)

	fe.enter(condB)
	if s.Cond != nil {
		fe.cur.NewCondBr(fe.cond(inner, s.Cond), bodyB, endB)
	} else {
		fe.cur.NewBr(bodyB)
	}

	fe.enter(bodyB)
	fe.loopBody(inner, s.Body, endB, stepB)
	fe.br(stepB)

	fe.enter(stepB)
	if s.Step != nil {
		fe.emitExpr(inner, s.Step)
	}
	fe.cur.NewBr(condB)
	fe.enter(endB)
}

// emitForeach walks an array of known size. Without an index variable a
// hidden counter is used.
func (fe *funcEmitter) emitForeach(scope *symbols.Scope, s *ast.ForeachStmt) {
	inner := fe.child(scope, symbols.ScopeForeach, s.Loc)
	arr := fe.emitExpr(inner, s.X)
	arrPtr := fe.readAddress(arr)
	arrT := fe.e.llType(arr.t)
	size := int64(arr.t.ArraySize())

	var idxSlot *ir.InstAlloca
	idxT := fe.e.reg.Primitive(types.TyLong)
	var idxEntry *symbols.Entry
	if s.Index != nil {
		idxEntry = fe.lookup(inner, s.Index.Name)
		idxT = idxEntry.Type.Type
		idxSlot = fe.alloca(fe.e.llType(idxT), s.Index.Name)
		idxEntry.Address = idxSlot
	} else {
		idxSlot = fe.alloca(lltypes.I64, "foreach.idx")
	}
	it := fe.e.llType(idxT).(*lltypes.IntType)
	var start value.Value = constant.NewInt(it, 0)
	if s.Index != nil && s.Index.Value != nil {
		start = fe.rvalue(inner, s.Index.Value, idxT)
	}
	fe.store(start, idxSlot, idxEntry)

	itemEntry := fe.lookup(inner, s.Item.Name)
	itemSlot := fe.alloca(fe.e.llType(itemEntry.Type.Type), s.Item.Name)
	itemEntry.Address = itemSlot

	condB := fe.newBlock("foreach.cond")
	bodyB := fe.newBlock("foreach.body")
	stepB := fe.newBlock("foreach.step")
	endB := fe.newBlock("foreach.end")
	fe.cur.NewBr(condB)

	fe.enter(condB)
	idx := fe.cur.NewLoad(it, idxSlot)
	fe.cur.NewCondBr(fe.cur.NewICmp(enum.IPredSLT, idx, constant.NewInt(it, size)), bodyB, endB)

	fe.enter(bodyB)
	pos := fe.toI64(idx, idxT)
	item := fe.cur.NewLoad(itemSlot.ElemType, fe.cur.NewGetElementPtr(arrT, arrPtr, i64(0), pos))
	fe.store(item, itemSlot, itemEntry)
	fe.loopBody(inner, s.Body, endB, stepB)
	fe.br(stepB)

	fe.enter(stepB)
	cur := fe.cur.NewLoad(it, idxSlot)
	fe.store(fe.cur.NewAdd(cur, constant.NewInt(it, 1)), idxSlot, idxEntry)
	fe.cur.NewBr(condB)
	fe.enter(endB)
}

// emitSwitch lowers to an IR switch. Cases do not fall through unless they
// end in a fallthrough statement.
func (fe *funcEmitter) emitSwitch(scope *symbols.Scope, s *ast.SwitchStmt) {
	inner := fe.child(scope, symbols.ScopeSwitch, s.Loc)
	x := fe.emitExpr(inner, s.X)
	xv := fe.resolveValue(x)
	endB := fe.newBlock("switch.end")
	defB := endB
	if s.Default != nil {
		defB = fe.newBlock("switch.default")
	}
	blocks := make([]*ir.Block, len(s.Cases))
	var cases []*ir.Case
	seen := make(map[int64]bool)
	for i, c := range s.Cases {
		blocks[i] = fe.newBlock("switch.case")
		for _, v := range c.Values {
			k := v.ConstAt(fe.idx)
			if k == nil {
				fe.e.fail(v.Loc, diag.IRWrongType, "case value is not constant")
			}
			n := k.Int
			if k.Kind == ast.ConstBool && k.Bool {
				n = 1
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			ci, ok := fe.e.constScalar(k, x.t).(*constant.Int)
			if !ok {
				fe.e.fail(v.Loc, diag.IRWrongType, "case value of type %s", x.t.Name())
			}
			cases = append(cases, ir.NewCase(ci, blocks[i]))
		}
	}
	fe.cur.NewSwitch(xv, defB, cases...)

	saved, savedDepth := fe.fallthroughTo, fe.fallDepth
	fe.fallDepth = len(fe.cleanups)
	for i, c := range s.Cases {
		fe.fallthroughTo = defB
		if i+1 < len(blocks) {
			fe.fallthroughTo = blocks[i+1]
		}
		fe.enter(blocks[i])
		fe.emitScoped(fe.child(inner, symbols.ScopeCase, c.Loc), c.Body.Stmts)
		fe.br(endB)
	}
	fe.fallthroughTo, fe.fallDepth = saved, savedDepth
	if s.Default != nil {
		fe.enter(defB)
		fe.emitScoped(fe.child(inner, symbols.ScopeCase, s.Default.Loc), s.Default.Stmts)
		fe.br(endB)
	}
	fe.enter(endB)
}

func (fe *funcEmitter) emitReturnStmt(scope *symbols.Scope, s *ast.ReturnStmt) {
	if s.Value == nil {
		fe.emitReturn(nil, nil)
		return
	}
	var keep *symbols.Entry
	if s.Value.Kind == ast.ExprIdent {
		keep, _ = s.Value.RefAt(fe.idx).(*symbols.Entry)
	}
	want := fe.retType()
	fe.emitReturn(fe.rvalue(scope, s.Value, want), keep)
}

// retType is the declared return type of the function or lambda.
func (fe *funcEmitter) retType() *types.Type {
	if fe.result != nil {
		return fe.result.Type.Type
	}
	fe.e.fail(fe.loc, diag.IRWrongType, "return value in a procedure")
	return nil
}

// emitAssert aborts with the condition's source text when it is false.
func (fe *funcEmitter) emitAssert(scope *symbols.Scope, s *ast.AssertStmt) {
	okB := fe.newBlock("assert.ok")
	failB := fe.newBlock("assert.fail")
	fe.cur.NewCondBr(fe.cond(scope, s.Cond), okB, failB)
	fe.enter(failB)
	fe.abort(fe.e.stringPtr("Assertion failed: " + s.Text))
	fe.enter(okB)
}

func (fe *funcEmitter) cond(scope *symbols.Scope, x *ast.Expr) value.Value {
	return fe.resolveValue(fe.emitExpr(scope, x))
}
