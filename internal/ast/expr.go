package ast

import "spice/internal/source"

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota

	// literals
	ExprIntLit    // 5
	ExprShortLit  // 5s
	ExprLongLit   // 5l
	ExprDoubleLit // 1.5
	ExprCharLit   // 'a'
	ExprStringLit // "abc"
	ExprBoolLit   // true
	ExprNil       // nil<T>

	ExprIdent   // Name
	ExprMember  // X.Name
	ExprIndex   // X[Y]
	ExprCall    // X<Templates>(Args)
	ExprBinary  // X Op Y
	ExprAssign  // X Op= Y
	ExprTernary // X ? Y : Z
	ExprPrefix  // Op X
	ExprPostfix // X Op
	ExprCast    // (Type) X

	ExprArrayLit  // [Args]
	ExprStructLit // Type{Args}
	ExprLambda    // Func

	// builtins
	ExprSizeof  // sizeof(Type) or sizeof(X)
	ExprAlignof // alignof(Type) or alignof(X)
	ExprLen     // len(X)
	ExprPrintf  // printf(Str, Args)
	ExprPanic   // panic(Args)
	ExprSyscall // syscall(Args)
	ExprTid     // tid()
	ExprJoin    // join(Args)
	ExprThread  // thread Body
)

var exprKindNames = [...]string{
	ExprInvalid: "invalid", ExprIntLit: "int literal", ExprShortLit: "short literal",
	ExprLongLit: "long literal", ExprDoubleLit: "double literal", ExprCharLit: "char literal",
	ExprStringLit: "string literal", ExprBoolLit: "bool literal", ExprNil: "nil",
	ExprIdent: "identifier", ExprMember: "member access", ExprIndex: "index",
	ExprCall: "call", ExprBinary: "binary", ExprAssign: "assignment", ExprTernary: "ternary",
	ExprPrefix: "prefix", ExprPostfix: "postfix", ExprCast: "cast",
	ExprArrayLit: "array literal", ExprStructLit: "struct literal", ExprLambda: "lambda",
	ExprSizeof: "sizeof", ExprAlignof: "alignof", ExprLen: "len", ExprPrintf: "printf",
	ExprPanic: "panic", ExprSyscall: "syscall", ExprTid: "tid", ExprJoin: "join", ExprThread: "thread",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "?"
}

// Expr is a tagged expression node. Which operand fields are set depends on Kind,
// see the comments on the ExprKind constants.
type Expr struct {
	Slots
	Kind ExprKind
	Op   Op
	Span source.Span
	Loc  source.CodeLoc

	X, Y, Z *Expr
	Args    []*Expr

	Name string // identifier or member name
	Lit  Const  // literal payload

	Type      *DataType   // cast target, sizeof operand, nil<T>, struct literal name
	Templates []*DataType // explicit call templates: f<int>(..)

	Func *FuncLit // lambda
	Body *Block   // thread body
}

// IsLiteral reports whether the node is a scalar literal.
func (e *Expr) IsLiteral() bool {
	return e.Kind >= ExprIntLit && e.Kind <= ExprBoolLit
}

// FuncLit is a lambda: `f<R>(T a) { }` or `p(T a) { }`.
type FuncLit struct {
	Loc    source.CodeLoc
	Span   source.Span
	IsProc bool
	Return *DataType
	Params []*Param
	Body   *Block
}
