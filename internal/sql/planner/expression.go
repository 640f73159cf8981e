package planner

import (
	"fmt"
	"strings"

	"github.com/cascadedb/cascade/internal/sql/types"
)

// Expression represents a scalar expression inside a plan node. The set of
// implementations is closed: Call, Constant, InputReference,
// LambdaDefinition, SpecialForm and VariableReference. Expressions are
// immutable and compared structurally.
type Expression interface {
	// String returns a string representation.
	String() string
	// DataType returns the result type of the expression.
	DataType() types.DataType
	// Equals reports structural equality with another expression.
	Equals(other Expression) bool
	// Accept accepts a visitor.
	Accept(visitor ExpressionVisitor) error
}

// ExpressionVisitor visits every expression variant.
type ExpressionVisitor interface {
	VisitCall(expr *Call) error
	VisitConstant(expr *Constant) error
	VisitInputReference(expr *InputReference) error
	VisitLambdaDefinition(expr *LambdaDefinition) error
	VisitSpecialForm(expr *SpecialForm) error
	VisitVariableReference(expr *VariableReference) error
}

// Call represents a function invocation.
type Call struct {
	Function string
	Args     []Expression
	Type     types.DataType
}

// NewCall creates a function call expression.
func NewCall(function string, resultType types.DataType, args ...Expression) *Call {
	return &Call{Function: function, Args: args, Type: resultType}
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Function, strings.Join(args, ", "))
}

func (c *Call) DataType() types.DataType { return c.Type }

func (c *Call) Equals(other Expression) bool {
	o, ok := other.(*Call)
	if !ok || c.Function != o.Function || len(c.Args) != len(o.Args) {
		return false
	}
	if c.Type.Name() != o.Type.Name() {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (c *Call) Accept(visitor ExpressionVisitor) error {
	return visitor.VisitCall(c)
}

// Constant represents a literal value of a known type.
type Constant struct {
	Type  types.DataType
	Value types.Value
}

// NewConstant creates a constant expression.
func NewConstant(dataType types.DataType, value types.Value) *Constant {
	return &Constant{Type: dataType, Value: value}
}

// TrueLiteral returns the boolean constant TRUE.
func TrueLiteral() *Constant {
	return NewConstant(types.Boolean, types.NewValue(true))
}

// FalseLiteral returns the boolean constant FALSE.
func FalseLiteral() *Constant {
	return NewConstant(types.Boolean, types.NewValue(false))
}

func (c *Constant) String() string {
	if c.Value.IsNull() {
		return "NULL"
	}
	switch v := c.Value.Data.(type) {
	case string:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "''"))
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", c.Value.Data)
	}
}

func (c *Constant) DataType() types.DataType { return c.Type }

func (c *Constant) Equals(other Expression) bool {
	o, ok := other.(*Constant)
	if !ok || c.Type.Name() != o.Type.Name() {
		return false
	}
	return c.Type.Compare(c.Value, o.Value) == 0
}

func (c *Constant) Accept(visitor ExpressionVisitor) error {
	return visitor.VisitConstant(c)
}

// IsTrue reports whether the expression is the boolean constant TRUE.
func IsTrue(e Expression) bool {
	c, ok := e.(*Constant)
	if !ok || c.Value.IsNull() {
		return false
	}
	b, err := c.Value.AsBool()
	return err == nil && b
}

// IsFalse reports whether the expression is the boolean constant FALSE.
func IsFalse(e Expression) bool {
	c, ok := e.(*Constant)
	if !ok || c.Value.IsNull() {
		return false
	}
	b, err := c.Value.AsBool()
	return err == nil && !b
}

// InputReference refers to a field of the node's input row by position.
type InputReference struct {
	Field int
	Type  types.DataType
}

// NewInputReference creates an input reference expression.
func NewInputReference(field int, dataType types.DataType) *InputReference {
	return &InputReference{Field: field, Type: dataType}
}

func (r *InputReference) String() string {
	return fmt.Sprintf("#%d", r.Field)
}

func (r *InputReference) DataType() types.DataType { return r.Type }

func (r *InputReference) Equals(other Expression) bool {
	o, ok := other.(*InputReference)
	return ok && r.Field == o.Field && r.Type.Name() == o.Type.Name()
}

func (r *InputReference) Accept(visitor ExpressionVisitor) error {
	return visitor.VisitInputReference(r)
}

// LambdaParameter is one typed parameter of a lambda.
type LambdaParameter struct {
	Name string
	Type types.DataType
}

// LambdaDefinition represents an inline function value.
type LambdaDefinition struct {
	Parameters []LambdaParameter
	Body       Expression
}

// NewLambdaDefinition creates a lambda expression.
func NewLambdaDefinition(parameters []LambdaParameter, body Expression) *LambdaDefinition {
	return &LambdaDefinition{Parameters: parameters, Body: body}
}

func (l *LambdaDefinition) String() string {
	names := make([]string, len(l.Parameters))
	for i, p := range l.Parameters {
		names[i] = p.Name
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(names, ", "), l.Body.String())
}

// DataType of a lambda is its body's result type.
func (l *LambdaDefinition) DataType() types.DataType { return l.Body.DataType() }

func (l *LambdaDefinition) Equals(other Expression) bool {
	o, ok := other.(*LambdaDefinition)
	if !ok || len(l.Parameters) != len(o.Parameters) {
		return false
	}
	for i := range l.Parameters {
		if l.Parameters[i].Name != o.Parameters[i].Name ||
			l.Parameters[i].Type.Name() != o.Parameters[i].Type.Name() {
			return false
		}
	}
	return l.Body.Equals(o.Body)
}

func (l *LambdaDefinition) Accept(visitor ExpressionVisitor) error {
	return visitor.VisitLambdaDefinition(l)
}

// SpecialFormKind identifies a non-function syntactic form.
type SpecialFormKind int

const (
	FormAnd SpecialFormKind = iota
	FormOr
	FormNot
	FormIf
	FormCoalesce
	FormIn
	FormIsNull
)

func (k SpecialFormKind) String() string {
	switch k {
	case FormAnd:
		return "AND"
	case FormOr:
		return "OR"
	case FormNot:
		return "NOT"
	case FormIf:
		return "IF"
	case FormCoalesce:
		return "COALESCE"
	case FormIn:
		return "IN"
	case FormIsNull:
		return "IS_NULL"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// SpecialForm represents syntactic forms with evaluation rules that differ
// from plain function calls (short circuiting, null handling).
type SpecialForm struct {
	Form SpecialFormKind
	Args []Expression
	Type types.DataType
}

// NewSpecialForm creates a special form expression.
func NewSpecialForm(form SpecialFormKind, resultType types.DataType, args ...Expression) *SpecialForm {
	return &SpecialForm{Form: form, Args: args, Type: resultType}
}

func (s *SpecialForm) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", s.Form, strings.Join(args, ", "))
}

func (s *SpecialForm) DataType() types.DataType { return s.Type }

func (s *SpecialForm) Equals(other Expression) bool {
	o, ok := other.(*SpecialForm)
	if !ok || s.Form != o.Form || len(s.Args) != len(o.Args) {
		return false
	}
	if s.Type.Name() != o.Type.Name() {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (s *SpecialForm) Accept(visitor ExpressionVisitor) error {
	return visitor.VisitSpecialForm(s)
}

// VariableReference refers to a symbol by name.
type VariableReference struct {
	Symbol Symbol
	Type   types.DataType
}

// NewVariableReference creates a variable reference expression.
func NewVariableReference(symbol Symbol, dataType types.DataType) *VariableReference {
	return &VariableReference{Symbol: symbol, Type: dataType}
}

func (v *VariableReference) String() string {
	return v.Symbol.Name()
}

func (v *VariableReference) DataType() types.DataType { return v.Type }

func (v *VariableReference) Equals(other Expression) bool {
	o, ok := other.(*VariableReference)
	return ok && v.Symbol == o.Symbol && v.Type.Name() == o.Type.Name()
}

func (v *VariableReference) Accept(visitor ExpressionVisitor) error {
	return visitor.VisitVariableReference(v)
}

// Conjunction combines expressions with AND, flattening the trivial cases.
func Conjunction(terms ...Expression) Expression {
	switch len(terms) {
	case 0:
		return TrueLiteral()
	case 1:
		return terms[0]
	default:
		return NewSpecialForm(FormAnd, types.Boolean, terms...)
	}
}

// ExtractConjuncts flattens nested AND forms into a list of conjuncts.
func ExtractConjuncts(e Expression) []Expression {
	if form, ok := e.(*SpecialForm); ok && form.Form == FormAnd {
		var out []Expression
		for _, arg := range form.Args {
			out = append(out, ExtractConjuncts(arg)...)
		}
		return out
	}
	return []Expression{e}
}

// Negate wraps an expression in NOT, collapsing double negation.
func Negate(e Expression) Expression {
	if form, ok := e.(*SpecialForm); ok && form.Form == FormNot {
		return form.Args[0]
	}
	return NewSpecialForm(FormNot, types.Boolean, e)
}
