package ast

// Inspect traverses statements and expressions depth-first. Nodes are
// Stmt values, *Expr, *FuncLit and *CaseClause. If f returns false the
// children of that node are skipped. Lambda and thread bodies are visited.
func Inspect(node any, f func(any) bool) {
	switch n := node.(type) {
	case nil:
		return
	case *Expr:
		if n == nil || !f(n) {
			return
		}
		Inspect(n.X, f)
		Inspect(n.Y, f)
		Inspect(n.Z, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
		if n.Func != nil {
			Inspect(n.Func, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *FuncLit:
		if n == nil || !f(n) {
			return
		}
		for _, p := range n.Params {
			Inspect(p.Default, f)
		}
		Inspect(n.Body, f)
	case *Block:
		if n == nil || !f(n) {
			return
		}
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *CaseClause:
		if !f(n) {
			return
		}
		for _, v := range n.Values {
			Inspect(v, f)
		}
		Inspect(n.Body, f)
	case Stmt:
		if !f(n) {
			return
		}
		inspectStmt(n, f)
	}
}

func inspectStmt(s Stmt, f func(any) bool) {
	switch n := s.(type) {
	case *DeclStmt:
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.X, f)
	case *IfStmt:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStmt:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *DoWhileStmt:
		Inspect(n.Body, f)
		Inspect(n.Cond, f)
	case *ForStmt:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
		Inspect(n.Cond, f)
		Inspect(n.Step, f)
		Inspect(n.Body, f)
	case *ForeachStmt:
		if n.Index != nil {
			Inspect(n.Index, f)
		}
		Inspect(n.Item, f)
		Inspect(n.X, f)
		Inspect(n.Body, f)
	case *SwitchStmt:
		Inspect(n.X, f)
		for _, c := range n.Cases {
			Inspect(c, f)
		}
		Inspect(n.Default, f)
	case *ReturnStmt:
		Inspect(n.Value, f)
	case *UnsafeStmt:
		Inspect(n.Body, f)
	case *AssertStmt:
		Inspect(n.Cond, f)
	}
}
