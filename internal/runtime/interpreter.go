package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"lava-lang/internal/ast"
	"lava-lang/internal/span"
	"lava-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // yeet: leave the current function with Value
	SigHalt              // skibidi: stop the whole program
)

func (s ExecSignal) String() string {
	switch s {
	case SigReturn:
		return "return"
	case SigHalt:
		return "halt"
	default:
		return "none"
	}
}

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// maxCallDepth bounds recursion so runaway programs fail with ErrRecursion
// instead of exhausting the Go stack.
const maxCallDepth = 5000

// ============================================================
// Interpreter
// ============================================================

// CallScope selects the parent of a function's frame.
type CallScope int

const (
	// CallScopeGlobal parents every call frame on the global scope.
	CallScopeGlobal CallScope = iota
	// CallScopeDynamic parents a call frame on the caller's scope, so a
	// function can see the caller's locals.
	CallScopeDynamic
)

func (c CallScope) String() string {
	if c == CallScopeDynamic {
		return "dynamic"
	}
	return "global"
}

// ParseCallScope maps "global" or "dynamic" to a CallScope.
func ParseCallScope(s string) (CallScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global":
		return CallScopeGlobal, nil
	case "dynamic":
		return CallScopeDynamic, nil
	}
	return CallScopeGlobal, fmt.Errorf("unknown call scope %q (want global or dynamic)", s)
}

// Interpreter walks the AST and executes it.
type Interpreter struct {
	global    *Environment
	output    io.Writer
	input     InputSource
	logger    *slog.Logger
	callScope CallScope
	depth     int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithInput sets the source gimme reads from. The default reads os.Stdin.
func WithInput(in InputSource) Option {
	return func(i *Interpreter) { i.input = in }
}

// WithLogger enables debug tracing of calls, halts and caught errors.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithCallScope chooses how function frames are parented.
func WithCallScope(scope CallScope) Option {
	return func(i *Interpreter) { i.callScope = scope }
}

// NewInterpreter creates a new interpreter with built-in functions registered.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		global: NewEnvironment(nil),
		output: output,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.input == nil {
		i.input = NewReaderInput(os.Stdin)
	}
	RegisterBuiltins(i.global, output, i.input)
	return i
}

// Global returns the global environment. It persists across Run calls, which
// is what lets the REPL keep state between inputs.
func (i *Interpreter) Global() *Environment {
	return i.global
}

// Run executes the top-level statements of file in the global environment.
// halted reports whether the program stopped at skibidi.
func (i *Interpreter) Run(file *ast.File) (halted bool, err error) {
	for _, stmt := range file.Body {
		result, err := i.exec(stmt, i.global)
		if err != nil {
			return false, err
		}
		switch result.Signal {
		case SigHalt:
			return true, nil
		case SigReturn:
			return false, runtimeErr(ErrControl, stmt.GetSpan(), "yeet outside of a function")
		}
	}
	return false, nil
}

// Exec runs stmts in env, stopping at the first error or signal.
func (i *Interpreter) Exec(stmts []ast.Stmt, env *Environment) (ExecResult, error) {
	for _, stmt := range stmts {
		result, err := i.exec(stmt, env)
		if err != nil || result.Signal != SigNone {
			return result, err
		}
	}
	return resultNone, nil
}

// Eval evaluates a single expression in env. A skibidi reached through a
// function call surfaces as ErrHalted.
func (i *Interpreter) Eval(expr ast.Expr, env *Environment) (Value, error) {
	return i.evalExpr(expr, env)
}

// exec runs one statement and turns a halt raised inside an expression
// into SigHalt.
func (i *Interpreter) exec(stmt ast.Stmt, env *Environment) (ExecResult, error) {
	result, err := i.execStmt(stmt, env)
	if errors.Is(err, ErrHalted) {
		return ExecResult{Signal: SigHalt}, nil
	}
	return result, err
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt, env *Environment) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Value, env)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, val.String())
		return resultNone, nil

	case *ast.CallStmt:
		_, err := i.evalCall(s.Call, env)
		return resultNone, err

	case *ast.MethodCallStmt:
		_, err := i.evalMethodCall(s.Call, env)
		return resultNone, err

	case *ast.SigmaDecl:
		return i.execDecl(s.Name, s.Value, s.Span, env, coerceSigma)

	case *ast.TweetDecl:
		return i.execDecl(s.Name, s.Value, s.Span, env, coerceTweet)

	case *ast.SquadDecl:
		return i.execDecl(s.Name, s.Value, s.Span, env, coerceSquad)

	case *ast.AssignStmt:
		return i.execAssign(s, env)

	case *ast.IndexAssignStmt:
		return i.execIndexAssign(s, env)

	case *ast.YapStmt:
		return i.execYap(s, env)

	case *ast.FlexStmt:
		return i.execFlex(s, env)

	case *ast.RizzCheckStmt:
		cond, err := i.evalExpr(s.Condition, env)
		if err != nil {
			return resultNone, err
		}
		if IsSlay(cond) {
			return i.Exec(s.Then, env)
		}
		return i.Exec(s.Else, env)

	case *ast.YeetStmt:
		val, ok := env.Get(s.Name)
		if !ok {
			return resultNone, runtimeErr(ErrUndefined, s.Span, "undefined variable '%s'", s.Name)
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.SkibidiStmt:
		i.logger.Debug("halt", "at", s.Span.Start.String())
		return ExecResult{Signal: SigHalt}, nil

	case *ast.FuncDecl:
		env.Define(s.Name, &FuncVal{Name: s.Name, Params: s.Params, Body: s.Body})
		return resultNone, nil

	case *ast.SusStmt:
		return i.execSus(s, env)

	default:
		return resultNone, runtimeErr(ErrType, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

// coercion adapts a value to a declaration's type, or explains why it cannot.
type coercion func(name string, v Value) (Value, string)

func coerceSigma(name string, v Value) (Value, string) {
	switch val := v.(type) {
	case StringVal:
		if n, ok := toNumber(string(val)); ok {
			return n, ""
		}
	case *ArrayVal:
		return nil, fmt.Sprintf("cannot assign array to sigma variable '%s'", name)
	}
	return v, ""
}

func coerceTweet(name string, v Value) (Value, string) {
	switch v.(type) {
	case IntVal, FloatVal:
		return StringVal(v.String()), ""
	case *ArrayVal:
		return nil, fmt.Sprintf("cannot assign array to tweet variable '%s'", name)
	}
	return v, ""
}

func coerceSquad(name string, v Value) (Value, string) {
	switch v.(type) {
	case *ArrayVal:
		return deepCopy(v), ""
	case StringVal:
		return v, ""
	}
	return nil, fmt.Sprintf("cannot assign non-array to squad variable '%s'", name)
}

func (i *Interpreter) execDecl(name string, expr ast.Expr, s span.Span, env *Environment, coerce coercion) (ExecResult, error) {
	val, err := i.evalExpr(expr, env)
	if err != nil {
		return resultNone, err
	}
	val, msg := coerce(name, val)
	if msg != "" {
		return resultNone, runtimeErr(ErrType, s, "%s", msg)
	}
	env.Define(name, val)
	return resultNone, nil
}

// execAssign updates an existing variable, converting the new value toward
// the type the variable currently holds.
func (i *Interpreter) execAssign(s *ast.AssignStmt, env *Environment) (ExecResult, error) {
	val, err := i.evalExpr(s.Value, env)
	if err != nil {
		return resultNone, err
	}
	existing, ok := env.Get(s.Name)
	if !ok {
		return resultNone, runtimeErr(ErrUndefined, s.Span, "undefined variable '%s'", s.Name)
	}

	switch old := existing.(type) {
	case IntVal, FloatVal:
		if str, isStr := val.(StringVal); isStr {
			if n, ok := toNumber(string(str)); ok {
				val = n
			}
		}
	case StringVal:
		if isNumber(val) {
			val = StringVal(val.String())
		}
	case *ArrayVal:
		if arr, isArr := val.(*ArrayVal); isArr && arr != old {
			val = deepCopy(arr)
		}
	}

	if err := env.Set(s.Name, val); err != nil {
		return resultNone, atSpan(err, s.Span)
	}
	return resultNone, nil
}

func (i *Interpreter) execIndexAssign(s *ast.IndexAssignStmt, env *Environment) (ExecResult, error) {
	arr, err := i.lookupArray(s.Name, s.Span, env)
	if err != nil {
		return resultNone, err
	}
	idx, err := i.evalIndex(arr, s.Index, env)
	if err != nil {
		return resultNone, err
	}
	val, err := i.evalExpr(s.Value, env)
	if err != nil {
		return resultNone, err
	}
	arr.Elements[idx] = val
	return resultNone, nil
}

// execYap counts from Start to End inclusive. The loop variable lives in
// env and keeps its last value after the loop.
func (i *Interpreter) execYap(s *ast.YapStmt, env *Environment) (ExecResult, error) {
	for n := s.Start; n <= s.End; n++ {
		env.Define(s.Var, IntVal(n))
		result, err := i.Exec(s.Body, env)
		if err != nil || result.Signal != SigNone {
			return result, err
		}
		if n == s.End {
			break
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execFlex(s *ast.FlexStmt, env *Environment) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition, env)
		if err != nil {
			return resultNone, err
		}
		if !IsSlay(cond) {
			return resultNone, nil
		}
		result, err := i.Exec(s.Body, env)
		if err != nil || result.Signal != SigNone {
			return result, err
		}
	}
}

// execSus runs the panik block when the sus block fails with a runtime
// error. yeet and skibidi are not errors and pass straight through.
func (i *Interpreter) execSus(s *ast.SusStmt, env *Environment) (ExecResult, error) {
	result, err := i.Exec(s.Body, env)
	if err == nil {
		return result, nil
	}
	i.logger.Debug("panik caught error", "at", s.Span.Start.String(), "error", err)
	return i.Exec(s.Handler, env)
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		if e.IsFloat {
			return FloatVal(e.Float), nil
		}
		return IntVal(e.Int), nil

	case *ast.StringLiteral:
		return StringVal(e.Value), nil

	case *ast.BoolLiteral:
		return Bool(e.Value), nil

	case *ast.NullLiteral:
		return Nvm, nil

	case *ast.UndecidedLiteral:
		return Delulu, nil

	case *ast.IdentExpr:
		val, ok := env.Get(e.Name)
		if !ok {
			return nil, runtimeErr(ErrUndefined, e.Span, "undefined variable '%s'", e.Name)
		}
		return val, nil

	case *ast.ArrayLiteral:
		elements := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			val, err := i.evalExpr(el, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return &ArrayVal{Elements: elements}, nil

	case *ast.IndexExpr:
		arr, err := i.lookupArray(e.Name, e.Span, env)
		if err != nil {
			return nil, err
		}
		idx, err := i.evalIndex(arr, e.Index, env)
		if err != nil {
			return nil, err
		}
		return arr.Elements[idx], nil

	case *ast.NotExpr:
		val, err := i.evalExpr(e.Operand, env)
		if err != nil {
			return nil, err
		}
		return Bool(!IsSlay(val)), nil

	case *ast.LogicExpr:
		return i.evalLogic(e, env)

	case *ast.BinaryExpr:
		return i.evalBinary(e, env)

	case *ast.CallExpr:
		return i.evalCall(e, env)

	case *ast.MethodCallExpr:
		return i.evalMethodCall(e, env)

	default:
		return nil, runtimeErr(ErrType, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

// evalLogic always evaluates both operands; frfr and maybe do not short-circuit.
func (i *Interpreter) evalLogic(e *ast.LogicExpr, env *Environment) (Value, error) {
	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}
	if e.Op == token.KW_FRFR {
		return Bool(IsSlay(left) && IsSlay(right)), nil
	}
	return Bool(IsSlay(left) || IsSlay(right)), nil
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr, env *Environment) (Value, error) {
	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		return arithmetic(e.Op, boolToNumber(left), boolToNumber(right), e.Span)

	case token.EQ:
		return Bool(valuesEqual(left, right)), nil
	case token.NEQ:
		return Bool(!valuesEqual(left, right)), nil

	case token.LT, token.GT, token.LTE, token.GTE:
		cmp, ok := compareValues(left, right)
		if !ok {
			return nil, runtimeErr(ErrType, e.Span, "cannot compare '%s' and '%s' with %s",
				left.TypeName(), right.TypeName(), e.Op)
		}
		switch e.Op {
		case token.LT:
			return Bool(cmp < 0), nil
		case token.GT:
			return Bool(cmp > 0), nil
		case token.LTE:
			return Bool(cmp <= 0), nil
		default:
			return Bool(cmp >= 0), nil
		}

	default:
		return nil, runtimeErr(ErrOperator, e.Span, "unknown operator '%s'", e.Op)
	}
}

// boolToNumber maps slay and cap to 1 and 0 for arithmetic.
func boolToNumber(v Value) Value {
	switch v {
	case Slay:
		return IntVal(1)
	case Cap:
		return IntVal(0)
	}
	return v
}

func arithmetic(op token.Kind, left, right Value, s span.Span) (Value, error) {
	li, lInt := left.(IntVal)
	ri, rInt := right.(IntVal)
	if lInt && rInt {
		// Results that do not fit in int64 continue as floats below.
		switch op {
		case token.PLUS:
			if sum, ok := addInt(li, ri); ok {
				return sum, nil
			}
		case token.MINUS:
			if diff, ok := subInt(li, ri); ok {
				return diff, nil
			}
		case token.STAR:
			if prod, ok := mulInt(li, ri); ok {
				return prod, nil
			}
		}
	}

	if lf, ok := ToFloat64(left); ok {
		if rf, ok := ToFloat64(right); ok {
			switch op {
			case token.PLUS:
				return FloatVal(lf + rf), nil
			case token.MINUS:
				return FloatVal(lf - rf), nil
			case token.STAR:
				return FloatVal(lf * rf), nil
			default:
				if rf == 0 {
					return nil, runtimeErr(ErrDivisionByZero, s, "division by zero")
				}
				return FloatVal(lf / rf), nil
			}
		}
	}

	switch op {
	case token.PLUS:
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return ls + rs, nil
			}
		}
		if la, ok := left.(*ArrayVal); ok {
			if ra, ok := right.(*ArrayVal); ok {
				elements := make([]Value, 0, len(la.Elements)+len(ra.Elements))
				elements = append(elements, la.Elements...)
				elements = append(elements, ra.Elements...)
				return &ArrayVal{Elements: elements}, nil
			}
		}
	case token.STAR:
		if ls, ok := left.(StringVal); ok && rInt {
			return repeat(ls, ri), nil
		}
		if rs, ok := right.(StringVal); ok && lInt {
			return repeat(rs, li), nil
		}
	}

	return nil, runtimeErr(ErrType, s, "unsupported operand types for %s: '%s' and '%s'",
		op, left.TypeName(), right.TypeName())
}

func addInt(a, b IntVal) (IntVal, bool) {
	sum := a + b
	return sum, (a >= 0) != (b >= 0) || (sum >= 0) == (a >= 0)
}

func subInt(a, b IntVal) (IntVal, bool) {
	diff := a - b
	return diff, (a >= 0) == (b >= 0) || (diff >= 0) == (a >= 0)
}

func mulInt(a, b IntVal) (IntVal, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	prod := a * b
	return prod, prod/b == a
}

func repeat(s StringVal, n IntVal) StringVal {
	if n <= 0 {
		return ""
	}
	return StringVal(strings.Repeat(string(s), int(n)))
}

// ---- arrays ----

func (i *Interpreter) lookupArray(name string, s span.Span, env *Environment) (*ArrayVal, error) {
	val, ok := env.Get(name)
	if !ok {
		return nil, runtimeErr(ErrUndefined, s, "undefined variable '%s'", name)
	}
	arr, ok := val.(*ArrayVal)
	if !ok {
		return nil, runtimeErr(ErrType, s, "'%s' is not an array", name)
	}
	return arr, nil
}

// evalIndex evaluates an index expression and resolves it against arr.
// Negative indices count from the end.
func (i *Interpreter) evalIndex(arr *ArrayVal, expr ast.Expr, env *Environment) (int, error) {
	val, err := i.evalExpr(expr, env)
	if err != nil {
		return 0, err
	}
	n, ok := val.(IntVal)
	if !ok {
		return 0, runtimeErr(ErrType, expr.GetSpan(), "array index must be integer, got %s", val.TypeName())
	}
	idx := int64(n)
	if idx < 0 {
		idx += int64(len(arr.Elements))
	}
	if idx < 0 || idx >= int64(len(arr.Elements)) {
		return 0, runtimeErr(ErrIndex, expr.GetSpan(), "index %d out of bounds for array of length %d", int64(n), len(arr.Elements))
	}
	return int(idx), nil
}

// evalMethodCall implements scooch: x.scooch(v) appends v, x.scooch(v, i)
// inserts v before index i. Both return the new length.
func (i *Interpreter) evalMethodCall(e *ast.MethodCallExpr, env *Environment) (Value, error) {
	arr, err := i.lookupArray(e.Receiver, e.Span, env)
	if err != nil {
		return nil, err
	}
	if e.Method != "scooch" {
		return nil, runtimeErr(ErrUndefined, e.Span, "unknown method '%s'", e.Method)
	}
	args, err := i.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}

	switch len(args) {
	case 1:
		arr.Elements = append(arr.Elements, args[0])
	case 2:
		n, ok := args[1].(IntVal)
		if !ok {
			return nil, runtimeErr(ErrType, e.Span, "scooch() position must be integer, got %s", args[1].TypeName())
		}
		pos := int64(n)
		if pos < 0 {
			pos += int64(len(arr.Elements))
		}
		if pos < 0 || pos > int64(len(arr.Elements)) {
			return nil, runtimeErr(ErrIndex, e.Span, "index %d out of bounds for array of length %d", int64(n), len(arr.Elements))
		}
		arr.Elements = append(arr.Elements, nil)
		copy(arr.Elements[pos+1:], arr.Elements[pos:])
		arr.Elements[pos] = args[0]
	default:
		return nil, runtimeErr(ErrArity, e.Span, "scooch() expects 1 or 2 arguments, got %d", len(args))
	}
	return IntVal(len(arr.Elements)), nil
}

// ---- calls ----

func (i *Interpreter) evalArgs(exprs []ast.Expr, env *Environment) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, a := range exprs {
		val, err := i.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

func (i *Interpreter) evalCall(e *ast.CallExpr, env *Environment) (Value, error) {
	args, err := i.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	callee, ok := env.Get(e.Name)
	if !ok {
		return nil, runtimeErr(ErrUndefined, e.Span, "undefined function '%s'", e.Name)
	}

	switch fn := callee.(type) {
	case *FuncVal:
		return i.callFunc(fn, args, env, e.Span)
	case *BuiltinVal:
		val, err := fn.Fn(args)
		if err != nil {
			return nil, atSpan(err, e.Span)
		}
		return val, nil
	default:
		return nil, runtimeErr(ErrType, e.Span, "'%s' is not a function", e.Name)
	}
}

// callFunc binds arguments positionally in a fresh frame and runs the body.
// A body that finishes without yeet returns nvm.
func (i *Interpreter) callFunc(fn *FuncVal, args []Value, caller *Environment, s span.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtimeErr(ErrArity, s, "function '%s' expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	if i.depth >= maxCallDepth {
		return nil, runtimeErr(ErrRecursion, s, "maximum call depth of %d exceeded in '%s'", maxCallDepth, fn.Name)
	}

	parent := i.global
	if i.callScope == CallScopeDynamic {
		parent = caller
	}
	frame := NewEnvironment(parent)
	for idx, param := range fn.Params {
		frame.Define(param, args[idx])
	}

	i.depth++
	i.logger.Debug("function enter", "name", fn.Name, "args", len(args), "depth", i.depth)
	result, err := i.Exec(fn.Body, frame)
	i.depth--

	if err != nil {
		return nil, err
	}
	switch result.Signal {
	case SigReturn:
		i.logger.Debug("function leave", "name", fn.Name, "result", result.Value.String())
		return result.Value, nil
	case SigHalt:
		return nil, ErrHalted
	}
	i.logger.Debug("function leave", "name", fn.Name, "result", Nvm.String())
	return Nvm, nil
}
