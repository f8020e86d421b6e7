package token

var keywords = map[string]Kind{
	"f":           KwF,
	"p":           KwP,
	"ext":         KwExt,
	"type":        KwType,
	"struct":      KwStruct,
	"interface":   KwInterface,
	"enum":        KwEnum,
	"dyn":         KwDyn,
	"import":      KwImport,
	"as":          KwAs,
	"if":          KwIf,
	"else":        KwElse,
	"while":       KwWhile,
	"do":          KwDo,
	"for":         KwFor,
	"foreach":     KwForeach,
	"switch":      KwSwitch,
	"case":        KwCase,
	"default":     KwDefault,
	"fallthrough": KwFallthrough,
	"break":       KwBreak,
	"continue":    KwContinue,
	"return":      KwReturn,
	"unsafe":      KwUnsafe,
	"assert":      KwAssert,
	"const":       KwConst,
	"public":      KwPublic,
	"heap":        KwHeap,
	"volatile":    KwVolatile,
	"inline":      KwInline,
	"true":        KwTrue,
	"false":       KwFalse,
	"nil":         KwNil,
	"sizeof":      KwSizeof,
	"alignof":     KwAlignof,
	"len":         KwLen,
	"printf":      KwPrintf,
	"panic":       KwPanic,
	"syscall":     KwSyscall,
	"tid":         KwTid,
	"join":        KwJoin,
	"thread":      KwThread,
	"double":      KwDouble,
	"int":         KwInt,
	"short":       KwShort,
	"long":        KwLong,
	"byte":        KwByte,
	"char":        KwChar,
	"string":      KwString,
	"bool":        KwBool,
}

// LookupKeyword reports whether ident is a keyword. Keywords are case sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
