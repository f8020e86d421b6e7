package token

import "testing"

func TestKeywordKindsRoundTrip(t *testing.T) {
	for text, k := range keywords {
		if !k.IsKeyword() {
			t.Errorf("%q: kind %d outside the keyword range", text, k)
		}
		if k.String() != text {
			t.Errorf("%q: String() = %q", text, k.String())
		}
	}
}

func TestPrimitiveTypeKeywords(t *testing.T) {
	for _, k := range []Kind{KwDouble, KwInt, KwShort, KwLong, KwByte, KwChar, KwString, KwBool} {
		if !k.IsPrimitiveType() {
			t.Errorf("%s must be a primitive type keyword", k)
		}
	}
	if KwDyn.IsPrimitiveType() {
		t.Errorf("dyn is not a primitive type keyword")
	}
}

func TestAssignKinds(t *testing.T) {
	for _, k := range []Kind{Assign, PlusAssign, ShrAssign, CaretAssign} {
		if !k.IsAssign() {
			t.Errorf("%s must be an assignment", k)
		}
	}
	if EqEq.IsAssign() {
		t.Errorf("== is not an assignment")
	}
}
