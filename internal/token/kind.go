package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident

	// literals
	IntLit    // 42, 42s, 42l, 0x2A, 0b101
	DoubleLit // 3.14
	CharLit   // 'a'
	StringLit // "abc"

	// keywords
	KwF           // f
	KwP           // p
	KwExt         // ext
	KwType        // type
	KwStruct      // struct
	KwInterface   // interface
	KwEnum        // enum
	KwDyn         // dyn
	KwImport      // import
	KwAs          // as
	KwIf          // if
	KwElse        // else
	KwWhile       // while
	KwDo          // do
	KwFor         // for
	KwForeach     // foreach
	KwSwitch      // switch
	KwCase        // case
	KwDefault     // default
	KwFallthrough // fallthrough
	KwBreak       // break
	KwContinue    // continue
	KwReturn      // return
	KwUnsafe      // unsafe
	KwAssert      // assert
	KwConst       // const
	KwPublic      // public
	KwHeap        // heap
	KwVolatile    // volatile
	KwInline      // inline
	KwTrue        // true
	KwFalse       // false
	KwNil         // nil
	KwSizeof      // sizeof
	KwAlignof     // alignof
	KwLen         // len
	KwPrintf      // printf
	KwPanic       // panic
	KwSyscall     // syscall
	KwTid         // tid
	KwJoin        // join
	KwThread      // thread
	KwDouble      // double
	KwInt         // int
	KwShort       // short
	KwLong        // long
	KwByte        // byte
	KwChar        // char
	KwString      // string
	KwBool        // bool

	// operators and punctuation
	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	ShlAssign     // <<=
	ShrAssign     // >>=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	EqEq          // ==
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	AndAnd        // &&
	OrOr          // ||
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	Bang          // !
	PlusPlus      // ++
	MinusMinus    // --
	Question      // ?
	Colon         // :
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	Ellipsis      // ...
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]

	kindCount
)

var kindNames = [kindCount]string{
	Invalid: "Invalid", EOF: "EOF", Ident: "Ident",
	IntLit: "IntLit", DoubleLit: "DoubleLit", CharLit: "CharLit", StringLit: "StringLit",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=", PercentAssign: "%=",
	ShlAssign: "<<=", ShrAssign: ">>=", AmpAssign: "&=", PipeAssign: "|=", CaretAssign: "^=",
	EqEq: "==", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", Shl: "<<", Shr: ">>",
	AndAnd: "&&", OrOr: "||", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", Bang: "!",
	PlusPlus: "++", MinusMinus: "--", Question: "?", Colon: ":", Semicolon: ";", Comma: ",",
	Dot: ".", Ellipsis: "...", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
}

func init() {
	for text, k := range keywords {
		kindNames[k] = text
	}
}

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether the kind is a language keyword.
func (k Kind) IsKeyword() bool {
	return k >= KwF && k <= KwBool
}

// IsPrimitiveType reports the keywords that name builtin data types.
func (k Kind) IsPrimitiveType() bool {
	return k >= KwDouble && k <= KwBool
}

// IsAssign reports = and the compound assignment operators.
func (k Kind) IsAssign() bool {
	return k >= Assign && k <= CaretAssign
}
