package ast

import "spice/internal/source"

// Stmt is implemented by every statement node.
type Stmt interface {
	Pos() source.CodeLoc
	stmtNode()
}

type (
	// Block is `{ ... }`. A bare block opens its own scope.
	Block struct {
		Loc   source.CodeLoc
		Span  source.Span
		Stmts []Stmt
	}

	// DeclStmt is `T name [= value];`.
	DeclStmt struct {
		Loc   source.CodeLoc
		Type  *DataType
		Name  string
		Value *Expr
	}

	ExprStmt struct {
		Loc source.CodeLoc
		X   *Expr
	}

	// IfStmt has Else set to nil, a *Block or a nested *IfStmt.
	IfStmt struct {
		Loc  source.CodeLoc
		Cond *Expr
		Then *Block
		Else Stmt
	}

	WhileStmt struct {
		Loc  source.CodeLoc
		Cond *Expr
		Body *Block
	}

	DoWhileStmt struct {
		Loc  source.CodeLoc
		Body *Block
		Cond *Expr
	}

	// ForStmt: Init is a *DeclStmt, an *ExprStmt or nil.
	ForStmt struct {
		Loc  source.CodeLoc
		Init Stmt
		Cond *Expr
		Step *Expr
		Body *Block
	}

	// ForeachStmt is `foreach [T idx,] T item : X { }`.
	ForeachStmt struct {
		Loc   source.CodeLoc
		Index *DeclStmt
		Item  *DeclStmt
		X     *Expr
		Body  *Block
	}

	SwitchStmt struct {
		Loc     source.CodeLoc
		X       *Expr
		Cases   []*CaseClause
		Default *Block
	}

	CaseClause struct {
		Loc    source.CodeLoc
		Values []*Expr
		Body   *Block
	}

	FallthroughStmt struct {
		Loc source.CodeLoc
	}

	// BreakStmt leaves Count enclosing breakable constructs.
	BreakStmt struct {
		Loc   source.CodeLoc
		Count int
	}

	ContinueStmt struct {
		Loc   source.CodeLoc
		Count int
	}

	ReturnStmt struct {
		Loc   source.CodeLoc
		Value *Expr
	}

	UnsafeStmt struct {
		Loc  source.CodeLoc
		Body *Block
	}

	// AssertStmt keeps the condition source text for the failure message.
	AssertStmt struct {
		Loc  source.CodeLoc
		Cond *Expr
		Text string
	}
)

func (s *Block) Pos() source.CodeLoc           { return s.Loc }
func (s *DeclStmt) Pos() source.CodeLoc        { return s.Loc }
func (s *ExprStmt) Pos() source.CodeLoc        { return s.Loc }
func (s *IfStmt) Pos() source.CodeLoc          { return s.Loc }
func (s *WhileStmt) Pos() source.CodeLoc       { return s.Loc }
func (s *DoWhileStmt) Pos() source.CodeLoc     { return s.Loc }
func (s *ForStmt) Pos() source.CodeLoc         { return s.Loc }
func (s *ForeachStmt) Pos() source.CodeLoc     { return s.Loc }
func (s *SwitchStmt) Pos() source.CodeLoc      { return s.Loc }
func (s *FallthroughStmt) Pos() source.CodeLoc { return s.Loc }
func (s *BreakStmt) Pos() source.CodeLoc       { return s.Loc }
func (s *ContinueStmt) Pos() source.CodeLoc    { return s.Loc }
func (s *ReturnStmt) Pos() source.CodeLoc      { return s.Loc }
func (s *UnsafeStmt) Pos() source.CodeLoc      { return s.Loc }
func (s *AssertStmt) Pos() source.CodeLoc      { return s.Loc }

func (*Block) stmtNode()           {}
func (*DeclStmt) stmtNode()        {}
func (*ExprStmt) stmtNode()        {}
func (*IfStmt) stmtNode()          {}
func (*WhileStmt) stmtNode()       {}
func (*DoWhileStmt) stmtNode()     {}
func (*ForStmt) stmtNode()         {}
func (*ForeachStmt) stmtNode()     {}
func (*SwitchStmt) stmtNode()      {}
func (*FallthroughStmt) stmtNode() {}
func (*BreakStmt) stmtNode()       {}
func (*ContinueStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()      {}
func (*UnsafeStmt) stmtNode()      {}
func (*AssertStmt) stmtNode()      {}
