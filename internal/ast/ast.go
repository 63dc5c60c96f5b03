// Package ast defines the LAVA syntax tree.
//
// Every statement and expression kind is its own struct; the evaluator
// dispatches on them with a type switch.
package ast

import (
	"lava-lang/internal/span"
	"lava-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// File is the parse result: top-level statements and function declarations
// in source order.
type File struct {
	NodeBase
	Body []Stmt
}

// ============================================================
// Expressions
// ============================================================

// NumberLiteral is an integer or decimal literal. IsFloat selects which of
// Int and Float holds the value.
type NumberLiteral struct {
	ExprBase
	IsFloat bool
	Int     int64
	Float   float64
}

// StringLiteral holds the text between the quotes.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral is slay or cap.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NullLiteral is nvm.
type NullLiteral struct {
	ExprBase
}

// UndecidedLiteral is delulu.
type UndecidedLiteral struct {
	ExprBase
}

// IdentExpr is a variable reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// ArrayLiteral is [a, b, c].
type ArrayLiteral struct {
	ExprBase
	Elements []Expr
}

// IndexExpr reads name[index]. Only a bare identifier can be subscripted.
type IndexExpr struct {
	ExprBase
	Name  string
	Index Expr
}

// NotExpr is nah expr.
type NotExpr struct {
	ExprBase
	Operand Expr
}

// LogicExpr joins two operands with frfr (AND) or maybe (OR).
type LogicExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// BinaryExpr is an arithmetic or comparison operation. All such operators
// share one precedence level and associate to the left.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr calls a named function: name(args).
type CallExpr struct {
	ExprBase
	Name string
	Args []Expr
}

// MethodCallExpr is name.method(args). The only method is scooch.
type MethodCallExpr struct {
	ExprBase
	Receiver string
	Method   string
	Args     []Expr
}

// ============================================================
// Statements
// ============================================================

// PrintStmt is hawk_tuah(expr).
type PrintStmt struct {
	StmtBase
	Value Expr
}

// CallStmt is a call whose result is discarded.
type CallStmt struct {
	StmtBase
	Call *CallExpr
}

// MethodCallStmt is a method call whose result is discarded.
type MethodCallStmt struct {
	StmtBase
	Call *MethodCallExpr
}

// SigmaDecl declares a numeric variable: sigma name = expr.
type SigmaDecl struct {
	StmtBase
	Name  string
	Value Expr
}

// TweetDecl declares a string variable: tweet name = expr.
type TweetDecl struct {
	StmtBase
	Name  string
	Value Expr
}

// SquadDecl declares an array variable: squad name = expr.
type SquadDecl struct {
	StmtBase
	Name  string
	Value Expr
}

// AssignStmt updates an existing variable: name = expr.
type AssignStmt struct {
	StmtBase
	Name  string
	Value Expr
}

// IndexAssignStmt is name[index] = expr.
type IndexAssignStmt struct {
	StmtBase
	Name  string
	Index Expr
	Value Expr
}

// YapStmt is the inclusive counting loop: yap name till start to end { body }.
type YapStmt struct {
	StmtBase
	Var   string
	Start int64
	End   int64
	Body  []Stmt
}

// FlexStmt loops while its condition is slay.
type FlexStmt struct {
	StmtBase
	Condition Expr
	Body      []Stmt
}

// RizzCheckStmt is rizz_check cond { then } nah_fam { else }. A chained
// "nah_fam rizz_check" is stored as a single nested RizzCheckStmt in Else.
type RizzCheckStmt struct {
	StmtBase
	Condition Expr
	Then      []Stmt
	Else      []Stmt
}

// YeetStmt returns the value of a named variable from the current function.
type YeetStmt struct {
	StmtBase
	Name string
}

// SkibidiStmt halts the whole program.
type SkibidiStmt struct {
	StmtBase
}

// FuncDecl is cook name(params) { body }. Only valid at top level.
type FuncDecl struct {
	StmtBase
	Name   string
	Params []string
	Body   []Stmt
}

// SusStmt is sus { body } panik { handler }.
type SusStmt struct {
	StmtBase
	Body    []Stmt
	Handler []Stmt
}
