package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedChar   Code = 1003
	LexUnterminatedBlock  Code = 1004
	LexBadNumber          Code = 1005

	// Syntax
	SynUnexpectedToken    Code = 2001
	SynExpectSemicolon    Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectType         Code = 2004
	SynUnexpectedTopLevel Code = 2005
	SynBadLiteral         Code = 2006
	SynReservedKeyword    Code = 2007

	// Semantic
	SemReferencedUndefinedFunction Code = 3001
	SemReferencedUndefinedVariable Code = 3002
	SemReferencedUndefinedStruct   Code = 3003
	SemFunctionAmbiguity           Code = 3004
	SemStructAmbiguity             Code = 3005
	SemVariableDeclaredTwice       Code = 3006
	SemFunctionDeclaredTwice       Code = 3007
	SemGenericTypeDeclaredTwice    Code = 3008
	SemStructDeclaredTwice         Code = 3009
	SemEnumDeclaredTwice           Code = 3010
	SemDuplicateEnumItemName       Code = 3011
	SemDuplicateEnumItemValue      Code = 3012
	SemGlobalOfTypeDyn             Code = 3013
	SemGlobalOfInvalidType         Code = 3014
	SemGlobalConstWithoutValue     Code = 3015
	SemFunctionWithoutReturnStmt   Code = 3016
	SemInvalidParamOrder           Code = 3017
	SemDtorMustBeProcedure         Code = 3018
	SemDtorWithParams              Code = 3019
	SemOperatorWrongDataType       Code = 3020
	SemUnexpectedDynType           Code = 3021
	SemReassignConstVariable       Code = 3022
	SemConditionMustBeBool         Code = 3023
	SemMissingMainFunction         Code = 3024
	SemFctParamIsTypeDyn           Code = 3025
	SemInvalidBreakNumber          Code = 3026
	SemInvalidContinueNumber       Code = 3027
	SemPrintfTypeError             Code = 3028
	SemPrintfArgCountError         Code = 3029
	SemDuplicateImportName         Code = 3030
	SemImportedFileNotExisting     Code = 3031
	SemCircularDependency          Code = 3032
	SemMemberAccessOnlyStructs     Code = 3033
	SemScopeAccessOnlyImports      Code = 3034
	SemUnknownDatatype             Code = 3035
	SemNumberOfFieldsNotMatching   Code = 3036
	SemFieldTypeNotMatching        Code = 3037
	SemArraySizeInvalid            Code = 3038
	SemArrayIndexNotIntOrLong      Code = 3039
	SemArrayItemTypeNotMatching    Code = 3040
	SemExpectedArrayType           Code = 3041
	SemSizeofDynamicSizedArray     Code = 3042
	SemReturnWithoutValueResult    Code = 3043
	SemReturnWithValueInProcedure  Code = 3044
	SemDynPointersNotAllowed       Code = 3045
	SemDynArraysNotAllowed         Code = 3046
	SemGenericTypeNotInTemplate    Code = 3047
	SemSpecifierAtIllegalContext   Code = 3048
	SemInsufficientVisibility      Code = 3049
	SemTidInvalid                  Code = 3050
	SemJoinArgMustBeTid            Code = 3051
	SemExpectedGenericType         Code = 3052
	SemExpectedValue               Code = 3053
	SemExpectedType                Code = 3054
	SemUnsafeOperationInSafeCtx    Code = 3055
	SemAssertionConditionBool      Code = 3056
	SemArrayIndexOutOfBounds       Code = 3057
	SemReservedKeyword             Code = 3058
	SemInterfaceMethodNotImpl      Code = 3059
	SemFallthroughNotAllowed       Code = 3060
	SemComingSoon                  Code = 3099

	// IR generation (internal)
	IRTargetNotAvailable Code = 4001
	IRCantOpenOutputFile Code = 4002
	IRWrongType          Code = 4003
	IRBranchNotFound     Code = 4004
	IRUnexpectedDynType  Code = 4005
	IRPrintfNullType     Code = 4006
	IRVariableNotFound   Code = 4007
	IRInvalidFunction    Code = 4008
	IRInvalidModule      Code = 4009
	IRComingSoon         Code = 4099

	// Compiler-wide operational
	CmpInternalError           Code = 5001
	CmpIOError                 Code = 5002
	CmpUnhandledBranch         Code = 5003
	CmpSourceFileNotFound      Code = 5004
	CmpTypeCheckerRunsExceeded Code = 5005
	CmpManifestInvalid         Code = 5006
	CmpCantOpenOutputFile      Code = 5007
	CmpTargetNotAvailable      Code = 5008

	// Warnings
	WarnUnusedFunction      Code = 6001
	WarnUnusedProcedure     Code = 6002
	WarnUnusedStruct        Code = 6003
	WarnUnusedImport        Code = 6004
	WarnUnusedVariable      Code = 6005
	WarnArrayTooManyValues  Code = 6006
	WarnIndexExceedsArrSize Code = 6007
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		LexUnknownChar:        "Unknown character",
		LexUnterminatedString: "Unterminated string literal",
		LexUnterminatedChar:   "Unterminated char literal",
		LexUnterminatedBlock:  "Unterminated block comment",
		LexBadNumber:          "Malformed number literal",

		SynUnexpectedToken:    "Unexpected token",
		SynExpectSemicolon:    "Expected ';'",
		SynExpectIdentifier:   "Expected identifier",
		SynExpectType:         "Expected data type",
		SynUnexpectedTopLevel: "Unexpected top-level construct",
		SynBadLiteral:         "Invalid literal",
		SynReservedKeyword:    "Reserved keyword used as identifier",

		SemReferencedUndefinedFunction: "Referenced undefined function",
		SemReferencedUndefinedVariable: "Referenced undefined variable",
		SemReferencedUndefinedStruct:   "Referenced undefined struct",
		SemFunctionAmbiguity:           "Function ambiguity",
		SemStructAmbiguity:             "Struct ambiguity",
		SemVariableDeclaredTwice:       "Multiple declarations of the same variable",
		SemFunctionDeclaredTwice:       "Multiple declarations of a function/procedure",
		SemGenericTypeDeclaredTwice:    "Multiple declarations of a generic type with the same name",
		SemStructDeclaredTwice:         "Multiple declarations of a struct with the same name",
		SemEnumDeclaredTwice:           "Multiple declarations of an enum with the same name",
		SemDuplicateEnumItemName:       "Duplicate enum item name",
		SemDuplicateEnumItemValue:      "Duplicate enum item value",
		SemGlobalOfTypeDyn:             "Global of type dyn",
		SemGlobalOfInvalidType:         "Global of invalid type",
		SemGlobalConstWithoutValue:     "Global const without value",
		SemFunctionWithoutReturnStmt:   "Missing return statement",
		SemInvalidParamOrder:           "Invalid argument order",
		SemDtorMustBeProcedure:         "Destructor must be a procedure",
		SemDtorWithParams:              "Destructors must not have parameters",
		SemOperatorWrongDataType:       "Wrong data type for operator",
		SemUnexpectedDynType:           "Unexpected dyn type",
		SemReassignConstVariable:       "Cannot re-assign constant variable",
		SemConditionMustBeBool:         "Condition must be bool",
		SemMissingMainFunction:         "Spice programs must contain a main function",
		SemFctParamIsTypeDyn:           "Parameter type dyn not valid in function/procedure definition without default value",
		SemInvalidBreakNumber:          "Invalid number of break calls",
		SemInvalidContinueNumber:       "Invalid number of continue calls",
		SemPrintfTypeError:             "Types of printf call not matching",
		SemPrintfArgCountError:         "Printf arg number not matching template string",
		SemDuplicateImportName:         "Duplicate import name",
		SemImportedFileNotExisting:     "Imported source file not existing",
		SemCircularDependency:          "Circular import detected",
		SemMemberAccessOnlyStructs:     "Member access is only allowed on structs",
		SemScopeAccessOnlyImports:      "Scope access is only allowed on imports",
		SemUnknownDatatype:             "Unknown datatype",
		SemNumberOfFieldsNotMatching:   "Number of struct fields not matching declaration",
		SemFieldTypeNotMatching:        "The type of a field value does not match the declaration",
		SemArraySizeInvalid:            "Array size invalid",
		SemArrayIndexNotIntOrLong:      "Array index not of type int or long",
		SemArrayItemTypeNotMatching:    "Array item type not matching",
		SemExpectedArrayType:           "Expected array type",
		SemSizeofDynamicSizedArray:     "Sizeof dynamically sized array",
		SemReturnWithoutValueResult:    "Return without initialization of result variable",
		SemReturnWithValueInProcedure:  "Return with value in procedure",
		SemDynPointersNotAllowed:       "Dyn pointers not allowed",
		SemDynArraysNotAllowed:         "Dyn arrays not allowed",
		SemGenericTypeNotInTemplate:    "Generic type not contained in template",
		SemSpecifierAtIllegalContext:   "Specifier at illegal context",
		SemInsufficientVisibility:      "Insufficient symbol visibility",
		SemTidInvalid:                  "Invalid thread id",
		SemJoinArgMustBeTid:            "Argument of join builtin must be a tid",
		SemExpectedGenericType:         "Expected a generic type",
		SemExpectedValue:               "Expected value",
		SemExpectedType:                "Expected type",
		SemUnsafeOperationInSafeCtx:    "Unsafe operation in safe context",
		SemAssertionConditionBool:      "Assertion condition must be bool",
		SemArrayIndexOutOfBounds:       "Array index out of bounds",
		SemReservedKeyword:             "Reserved keyword used as identifier",
		SemInterfaceMethodNotImpl:      "Interface method not implemented",
		SemFallthroughNotAllowed:       "Fallthrough not allowed here",
		SemComingSoon:                  "Coming soon",

		IRTargetNotAvailable: "Selected target not available",
		IRCantOpenOutputFile: "Could not open output file",
		IRWrongType:          "Wrong type of output file",
		IRBranchNotFound:     "Branch not found",
		IRUnexpectedDynType:  "Unexpected type of dyn. Symbol table incomplete",
		IRPrintfNullType:     "Printf has null type",
		IRVariableNotFound:   "Variable not found",
		IRInvalidFunction:    "Invalid function",
		IRInvalidModule:      "Invalid module",
		IRComingSoon:         "Coming soon",

		CmpInternalError:           "Internal compiler error",
		CmpIOError:                 "I/O Error",
		CmpUnhandledBranch:         "Unhandled code branch",
		CmpSourceFileNotFound:      "Source file not found",
		CmpTypeCheckerRunsExceeded: "Type-checker runs exceeded",
		CmpManifestInvalid:         "Invalid project manifest",
		CmpCantOpenOutputFile:      "Cannot open output file",
		CmpTargetNotAvailable:      "Selected target not available",

		WarnUnusedFunction:      "Unused function",
		WarnUnusedProcedure:     "Unused procedure",
		WarnUnusedStruct:        "Unused struct",
		WarnUnusedImport:        "Unused import",
		WarnUnusedVariable:      "Unused variable",
		WarnArrayTooManyValues:  "Array has too many values",
		WarnIndexExceedsArrSize: "Array index exceeds its size",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("WRN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// IsWarning reports whether the code belongs to the warning range.
func (c Code) IsWarning() bool {
	return c >= 6000 && c < 7000
}
