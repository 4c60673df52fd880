// Package filter compiles AIP-160 filter expressions into in-memory predicates.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType is the declared type of a filterable field.
type FieldType int

const (
	// String fields compare lexically; ":" is a case-insensitive substring test.
	String FieldType = iota
	// Int fields compare numerically.
	Int
	// Bool fields support = and != and may appear bare.
	Bool
)

// Field declares one identifier that filters may reference.
type Field struct {
	Name string
	Type FieldType
}

// Getter resolves a field value on one record. Values are string, int64 or bool.
type Getter func(field string) (any, bool)

// Predicate reports whether a record matches a compiled filter.
type Predicate func(Getter) bool

// MatchAll accepts every record.
func MatchAll(Getter) bool { return true }

// Compile parses and type-checks filterStr against fields. An empty filter
// compiles to MatchAll.
func Compile(filterStr string, fields ...Field) (Predicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return MatchAll, nil
	}

	decls, err := declarations(fields)
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	if parsed.CheckedExpr == nil {
		return MatchAll, nil
	}

	types := make(map[string]FieldType, len(fields))
	for _, field := range fields {
		types[field.Name] = field.Type
	}
	return compileExpr(parsed.CheckedExpr.Expr, types)
}

func declarations(fields []Field) (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, field := range fields {
		var t *expr.Type
		switch field.Type {
		case Int:
			t = filtering.TypeInt
		case Bool:
			t = filtering.TypeBool
		default:
			t = filtering.TypeString
		}
		opts = append(opts, filtering.DeclareIdent(field.Name, t))
	}
	return filtering.NewDeclarations(opts...)
}

func compileExpr(e *expr.Expr, types map[string]FieldType) (Predicate, error) {
	if e == nil {
		return MatchAll, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return compileCall(kind.CallExpr, types)
	case *expr.Expr_IdentExpr:
		name := kind.IdentExpr.Name
		if types[name] != Bool {
			return nil, fmt.Errorf("field %s is not a boolean", name)
		}
		return func(get Getter) bool {
			value, ok := get(name)
			b, isBool := value.(bool)
			return ok && isBool && b
		}, nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func compileCall(call *expr.Expr_Call, types map[string]FieldType) (Predicate, error) {
	switch call.Function {
	case "_&&_", filtering.FunctionAnd, filtering.FunctionFuzzyAnd:
		return compileJunction(call.Args, types, true)
	case "_||_", filtering.FunctionOr:
		return compileJunction(call.Args, types, false)
	case "!_", filtering.FunctionNot:
		if len(call.Args) != 1 {
			return nil, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := compileExpr(call.Args[0], types)
		if err != nil {
			return nil, err
		}
		return func(get Getter) bool { return !inner(get) }, nil
	case "_==_", filtering.FunctionEquals,
		"_!=_", filtering.FunctionNotEquals,
		"_<_", filtering.FunctionLessThan,
		"_<=_", filtering.FunctionLessEquals,
		"_>_", filtering.FunctionGreaterThan,
		"_>=_", filtering.FunctionGreaterEquals,
		filtering.FunctionHas:
		return compileComparison(call.Function, call.Args, types)
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func compileJunction(args []*expr.Expr, types map[string]FieldType, and bool) (Predicate, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("logical operator requires 2 arguments")
	}
	parts := make([]Predicate, 0, len(args))
	for _, arg := range args {
		part, err := compileExpr(arg, types)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if and {
		return func(get Getter) bool {
			for _, part := range parts {
				if !part(get) {
					return false
				}
			}
			return true
		}, nil
	}
	return func(get Getter) bool {
		for _, part := range parts {
			if part(get) {
				return true
			}
		}
		return false
	}, nil
}

func compileComparison(function string, args []*expr.Expr, types map[string]FieldType) (Predicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := fieldName(args[0])
	if err != nil {
		return nil, err
	}
	fieldType, ok := types[field]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", field)
	}
	want, err := constValue(args[1])
	if err != nil {
		return nil, err
	}
	op := normalizeOperator(function)
	if fieldType == Bool && op != "=" && op != "!=" {
		return nil, fmt.Errorf("operator %s is not supported on boolean field %s", op, field)
	}

	return func(get Getter) bool {
		got, ok := get(field)
		if !ok {
			return false
		}
		cmp, comparable := compare(got, want, op)
		return comparable && cmp
	}, nil
}

func normalizeOperator(function string) string {
	switch function {
	case "_==_":
		return "="
	case "_!=_":
		return "!="
	case "_<_":
		return "<"
	case "_<=_":
		return "<="
	case "_>_":
		return ">"
	case "_>=_":
		return ">="
	default:
		return function
	}
}

func compare(got any, want any, op string) (bool, bool) {
	switch g := got.(type) {
	case string:
		w, ok := want.(string)
		if !ok {
			return false, false
		}
		if op == filtering.FunctionHas {
			return strings.Contains(strings.ToLower(g), strings.ToLower(w)), true
		}
		return ordered(strings.Compare(g, w), op), true
	case int64:
		w, ok := want.(int64)
		if !ok {
			return false, false
		}
		switch {
		case g < w:
			return ordered(-1, op), true
		case g > w:
			return ordered(1, op), true
		default:
			return ordered(0, op), true
		}
	case bool:
		w, ok := want.(bool)
		if !ok {
			return false, false
		}
		switch op {
		case "=":
			return g == w, true
		case "!=":
			return g != w, true
		}
	}
	return false, false
}

func ordered(cmp int, op string) bool {
	switch op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

func fieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

func constValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	if ident, ok := e.ExprKind.(*expr.Expr_IdentExpr); ok {
		switch ident.IdentExpr.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := constant.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
