package ast

// Op tags the operator of binary, assignment, prefix and postfix expressions.
// The parser picks it once; later passes switch on it.
type Op uint8

const (
	OpInvalid Op = iota

	// assignment
	OpAssign
	OpPlusAssign
	OpMinusAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign

	// binary
	OpLogicalOr
	OpLogicalAnd
	OpBitOr
	OpBitXor
	OpBitAnd
	OpEq
	OpNotEq
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem

	// prefix
	OpNeg
	OpPreInc
	OpPreDec
	OpNot
	OpBitNot
	OpDeref
	OpAddrOf

	// postfix
	OpPostInc
	OpPostDec
)

var opNames = [...]string{
	OpInvalid:     "?",
	OpAssign:      "=",
	OpPlusAssign:  "+=",
	OpMinusAssign: "-=",
	OpMulAssign:   "*=",
	OpDivAssign:   "/=",
	OpRemAssign:   "%=",
	OpShlAssign:   "<<=",
	OpShrAssign:   ">>=",
	OpAndAssign:   "&=",
	OpOrAssign:    "|=",
	OpXorAssign:   "^=",
	OpLogicalOr:   "||",
	OpLogicalAnd:  "&&",
	OpBitOr:       "|",
	OpBitXor:      "^",
	OpBitAnd:      "&",
	OpEq:          "==",
	OpNotEq:       "!=",
	OpLess:        "<",
	OpGreater:     ">",
	OpLessEq:      "<=",
	OpGreaterEq:   ">=",
	OpShl:         "<<",
	OpShr:         ">>",
	OpAdd:         "+",
	OpSub:         "-",
	OpMul:         "*",
	OpDiv:         "/",
	OpRem:         "%",
	OpNeg:         "-",
	OpPreInc:      "++",
	OpPreDec:      "--",
	OpNot:         "!",
	OpBitNot:      "~",
	OpDeref:       "*",
	OpAddrOf:      "&",
	OpPostInc:     "++",
	OpPostDec:     "--",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "?"
}

func (op Op) IsAssign() bool { return op >= OpAssign && op <= OpXorAssign }

// Compound returns the binary operator behind a compound assignment.
func (op Op) Compound() Op {
	switch op {
	case OpPlusAssign:
		return OpAdd
	case OpMinusAssign:
		return OpSub
	case OpMulAssign:
		return OpMul
	case OpDivAssign:
		return OpDiv
	case OpRemAssign:
		return OpRem
	case OpShlAssign:
		return OpShl
	case OpShrAssign:
		return OpShr
	case OpAndAssign:
		return OpBitAnd
	case OpOrAssign:
		return OpBitOr
	case OpXorAssign:
		return OpBitXor
	default:
		return OpInvalid
	}
}
