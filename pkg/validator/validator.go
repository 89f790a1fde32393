// Package validator implements static checks on tammr programs that the
// parser does not enforce.
package validator

import (
	"fmt"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
)

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate walks program and returns diagnostics in source order.
// Currently it reports function literals that repeat a parameter name.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{}
	for _, stmt := range program.Statements {
		v.validateStmt(stmt)
	}
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span, hint string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, hint))
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v.validateExpr(s.Value)
	case *ast.AssignStmt:
		v.validateExpr(s.Value)
	case *ast.ReturnStmt:
		if s.Value != nil {
			v.validateExpr(s.Value)
		}
	case *ast.ExprStmt:
		v.validateExpr(s.Expr)
	}
}

func (v *validator) validateBlock(block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.FunctionLiteral:
		v.validateParams(e)
		v.validateBlock(e.Body)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			v.validateExpr(el)
		}
	case *ast.HashLiteral:
		for _, p := range e.Pairs {
			v.validateExpr(p.Key)
			v.validateExpr(p.Value)
		}
	case *ast.PrefixExpr:
		v.validateExpr(e.Right)
	case *ast.InfixExpr:
		v.validateExpr(e.Left)
		v.validateExpr(e.Right)
	case *ast.IfExpr:
		v.validateExpr(e.Condition)
		v.validateBlock(e.Consequence)
		v.validateBlock(e.Alternative)
	case *ast.CallExpr:
		v.validateExpr(e.Callee)
		for _, a := range e.Args {
			v.validateExpr(a)
		}
	case *ast.IndexExpr:
		v.validateExpr(e.Left)
		v.validateExpr(e.Index)
	case *ast.DotExpr:
		// The right side names a key or property and is never evaluated.
		v.validateExpr(e.Left)
	}
}

func (v *validator) validateParams(fn *ast.FunctionLiteral) {
	seen := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		if seen[p.Value] {
			v.addDiag(diagnostics.EDupParam,
				fmt.Sprintf("duplicate parameter '%s'", p.Value), p.Span,
				"rename one of the parameters")
			continue
		}
		seen[p.Value] = true
	}
}
