package ast

import (
	"lava-lang/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// Every node becomes an object with a "kind" and a "span" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *File:
		return m("File", n.Span, "body", stmtSlice(n.Body))

	// ---- Expressions ----
	case *NumberLiteral:
		if n.IsFloat {
			return m("NumberLiteral", n.Span, "value", n.Float)
		}
		return m("NumberLiteral", n.Span, "value", n.Int)
	case *StringLiteral:
		return m("StringLiteral", n.Span, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n.Span, "value", n.Value)
	case *NullLiteral:
		return m("NullLiteral", n.Span)
	case *UndecidedLiteral:
		return m("UndecidedLiteral", n.Span)
	case *IdentExpr:
		return m("IdentExpr", n.Span, "name", n.Name)
	case *ArrayLiteral:
		return m("ArrayLiteral", n.Span, "elements", exprSlice(n.Elements))
	case *IndexExpr:
		return m("IndexExpr", n.Span, "name", n.Name, "index", NodeToMap(n.Index))
	case *NotExpr:
		return m("NotExpr", n.Span, "operand", NodeToMap(n.Operand))
	case *LogicExpr:
		return m("LogicExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *CallExpr:
		return m("CallExpr", n.Span, "name", n.Name, "args", exprSlice(n.Args))
	case *MethodCallExpr:
		return m("MethodCallExpr", n.Span,
			"receiver", n.Receiver,
			"method", n.Method,
			"args", exprSlice(n.Args))

	// ---- Statements ----
	case *PrintStmt:
		return m("PrintStmt", n.Span, "value", NodeToMap(n.Value))
	case *CallStmt:
		return m("CallStmt", n.Span, "call", NodeToMap(n.Call))
	case *MethodCallStmt:
		return m("MethodCallStmt", n.Span, "call", NodeToMap(n.Call))
	case *SigmaDecl:
		return m("SigmaDecl", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *TweetDecl:
		return m("TweetDecl", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *SquadDecl:
		return m("SquadDecl", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *AssignStmt:
		return m("AssignStmt", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *IndexAssignStmt:
		return m("IndexAssignStmt", n.Span,
			"name", n.Name,
			"index", NodeToMap(n.Index),
			"value", NodeToMap(n.Value))
	case *YapStmt:
		return m("YapStmt", n.Span,
			"var", n.Var,
			"start", n.Start,
			"end", n.End,
			"body", stmtSlice(n.Body))
	case *FlexStmt:
		return m("FlexStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", stmtSlice(n.Body))
	case *RizzCheckStmt:
		result := m("RizzCheckStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"then", stmtSlice(n.Then))
		if len(n.Else) > 0 {
			result["else"] = stmtSlice(n.Else)
		}
		return result
	case *YeetStmt:
		return m("YeetStmt", n.Span, "name", n.Name)
	case *SkibidiStmt:
		return m("SkibidiStmt", n.Span)
	case *FuncDecl:
		return m("FuncDecl", n.Span,
			"name", n.Name,
			"params", n.Params,
			"body", stmtSlice(n.Body))
	case *SusStmt:
		return m("SusStmt", n.Span,
			"body", stmtSlice(n.Body),
			"handler", stmtSlice(n.Handler))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
