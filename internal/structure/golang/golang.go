// Package golang builds code-unit trees for Go source files using
// go/ast. Cyclomatic complexity comes from gocyclo and cognitive
// complexity from gocognit.
package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"github.com/fzipp/gocyclo"
	"github.com/uudashr/gocognit"

	"github.com/unbound-force/wcc/internal/structure"
)

// literalName names anonymous function units.
const literalName = "func literal"

// Provider parses Go files.
type Provider struct{}

// NewProvider creates a Go provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Language implements structure.Provider.
func (p *Provider) Language() string { return "go" }

// Extensions implements structure.Provider.
func (p *Provider) Extensions() []string { return []string{".go"} }

// Parse implements structure.Provider.
func (p *Provider) Parse(path string) (*structure.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &structure.ParseError{
			Path: path,
			Err:  fmt.Errorf("%w: %v", structure.ErrUnreadableFile, err),
		}
	}
	return ParseSource(path, src)
}

// ParseSource builds the unit tree for already-loaded Go source.
func ParseSource(path string, src []byte) (*structure.Unit, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, &structure.ParseError{
			Path: path,
			Err:  fmt.Errorf("%w: %v", structure.ErrExtractionFailed, err),
		}
	}

	root := &structure.Unit{
		Kind:       structure.KindFile,
		Name:       path,
		StartLine:  1,
		EndLine:    structure.LineCount(src),
		Cyclomatic: 1,
	}

	b := builder{fset: fset}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Body == nil {
				continue
			}
			root.Children = append(root.Children, b.funcDecl(d))
		case *ast.GenDecl:
			// Package-level function literals (var handler = func() {...}).
			for _, lit := range directLiterals(d) {
				root.Children = append(root.Children, b.funcLit(lit))
			}
		}
	}

	for _, c := range root.Children {
		root.Cyclomatic += c.Cyclomatic
		root.Cognitive += c.Cognitive
	}
	return root, nil
}

type builder struct {
	fset *token.FileSet
}

func (b builder) funcDecl(fn *ast.FuncDecl) *structure.Unit {
	name := fn.Name.Name
	if fn.Recv != nil && fn.Recv.NumFields() > 0 {
		name = "(" + recvTypeString(fn.Recv.List[0].Type) + ")." + fn.Name.Name
	}

	u := &structure.Unit{
		Kind:       structure.KindFunction,
		Name:       name,
		StartLine:  b.fset.Position(fn.Pos()).Line,
		EndLine:    b.fset.Position(fn.End()).Line,
		Cyclomatic: float64(gocyclo.Complexity(fn) + countLiterals(fn.Body)),
		Cognitive:  float64(gocognit.Complexity(fn)),
	}
	for _, lit := range directLiterals(fn.Body) {
		u.Children = append(u.Children, b.funcLit(lit))
	}
	return u
}

func (b builder) funcLit(lit *ast.FuncLit) *structure.Unit {
	// gocognit only accepts declarations, so score the literal as an
	// anonymous one.
	decl := &ast.FuncDecl{
		Name: ast.NewIdent(literalName),
		Type: lit.Type,
		Body: lit.Body,
	}

	u := &structure.Unit{
		Kind:       structure.KindOther,
		Name:       literalName,
		StartLine:  b.fset.Position(lit.Pos()).Line,
		EndLine:    b.fset.Position(lit.End()).Line,
		Cyclomatic: float64(gocyclo.Complexity(lit) + countLiterals(lit.Body)),
		Cognitive:  float64(gocognit.Complexity(decl)),
	}
	for _, inner := range directLiterals(lit.Body) {
		u.Children = append(u.Children, b.funcLit(inner))
	}
	return u
}

// directLiterals returns the function literals in n that are not
// nested inside another literal.
func directLiterals(n ast.Node) []*ast.FuncLit {
	if n == nil {
		return nil
	}
	var lits []*ast.FuncLit
	ast.Inspect(n, func(node ast.Node) bool {
		if lit, ok := node.(*ast.FuncLit); ok {
			lits = append(lits, lit)
			return false
		}
		return true
	})
	return lits
}

// countLiterals counts every function literal below n. Each one is a
// unit of its own and contributes its base complexity to the sum.
func countLiterals(n ast.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	ast.Inspect(n, func(node ast.Node) bool {
		if _, ok := node.(*ast.FuncLit); ok {
			count++
		}
		return true
	})
	return count
}

// recvTypeString extracts the receiver type as a string.
func recvTypeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return "*" + recvTypeString(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return recvTypeString(t.X) + "[" + recvTypeString(t.Index) + "]"
	case *ast.IndexListExpr:
		return recvTypeString(t.X) + "[...]"
	default:
		return "?"
	}
}
