package connectors

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"time"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// maxExpressionDepth bounds AST recursion so adversarial expressions cannot
// blow the stack.
const maxExpressionDepth = 25

var mathFunctions = map[string]func(float64) float64{
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"log":  math.Log,
	"exp":  math.Exp,
}

// MathConnector evaluates arithmetic expressions deterministically by
// walking a parsed expression tree. Only whitelisted operators and
// functions are allowed; there are no variables and no side effects.
type MathConnector struct{}

// NewMathConnector creates the connector.
func NewMathConnector() *MathConnector { return &MathConnector{} }

// Execute evaluates args["expression"] and returns the result rendered as a
// string, matching the calculate contract.
func (c *MathConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	expression, _ := args["expression"].(string)
	result, err := EvaluateExpression(expression)
	if err != nil {
		return nil, errors.New(errors.CodeToolFailure, "invalid expression", err)
	}
	return map[string]any{"result": strconv.FormatFloat(result, 'g', -1, 64)}, nil
}

// Health always reports healthy; evaluation is local.
func (c *MathConnector) Health(ctx context.Context) bool { return true }

// Shutdown is a no-op.
func (c *MathConnector) Shutdown(ctx context.Context) error { return nil }

// EvaluateExpression parses and evaluates one arithmetic expression.
// Supported: numeric literals, + - * / %, ^ as power, unary minus, and the
// functions sqrt, sin, cos, tan, log, exp.
func EvaluateExpression(expression string) (float64, error) {
	if expression == "" {
		return 0, errors.Newf(errors.CodeValidation, "empty expression")
	}
	node, err := parser.ParseExpr(expression)
	if err != nil {
		return 0, errors.New(errors.CodeValidation, "parse expression", err)
	}
	return evalNode(node, 0)
}

func evalNode(node ast.Expr, depth int) (float64, error) {
	if depth > maxExpressionDepth {
		return 0, errors.Newf(errors.CodeValidation, "expression too complex")
	}

	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return 0, errors.Newf(errors.CodeValidation, "only numeric constants allowed")
		}
		return strconv.ParseFloat(n.Value, 64)

	case *ast.ParenExpr:
		return evalNode(n.X, depth+1)

	case *ast.UnaryExpr:
		operand, err := evalNode(n.X, depth+1)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -operand, nil
		case token.ADD:
			return operand, nil
		default:
			return 0, errors.Newf(errors.CodeValidation, "unary operator %s not allowed", n.Op)
		}

	case *ast.BinaryExpr:
		left, err := evalNode(n.X, depth+1)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(n.Y, depth+1)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return left + right, nil
		case token.SUB:
			return left - right, nil
		case token.MUL:
			return left * right, nil
		case token.QUO:
			if right == 0 {
				return 0, errors.Newf(errors.CodeValidation, "division by zero")
			}
			return left / right, nil
		case token.REM:
			if right == 0 {
				return 0, errors.Newf(errors.CodeValidation, "division by zero")
			}
			return math.Mod(left, right), nil
		case token.XOR:
			// ^ reads as power in calculator input.
			return math.Pow(left, right), nil
		default:
			return 0, errors.Newf(errors.CodeValidation, "operator %s not allowed", n.Op)
		}

	case *ast.CallExpr:
		ident, ok := n.Fun.(*ast.Ident)
		if !ok {
			return 0, errors.Newf(errors.CodeValidation, "only plain function calls allowed")
		}
		fn, ok := mathFunctions[ident.Name]
		if !ok {
			return 0, errors.Newf(errors.CodeValidation, "function %q not allowed", ident.Name)
		}
		if len(n.Args) != 1 {
			return 0, errors.Newf(errors.CodeValidation, "%s takes exactly one argument", ident.Name)
		}
		arg, err := evalNode(n.Args[0], depth+1)
		if err != nil {
			return 0, err
		}
		return fn(arg), nil

	case *ast.Ident:
		return 0, errors.Newf(errors.CodeValidation, "variables not allowed")

	default:
		return 0, errors.Newf(errors.CodeValidation, "unsupported expression element")
	}
}
