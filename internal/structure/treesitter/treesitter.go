// Package treesitter builds code-unit trees for non-Go languages from
// tree-sitter syntax trees.
package treesitter

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/unbound-force/wcc/internal/structure"
)

const anonymousName = "<anonymous>"

// Provider parses files of one tree-sitter grammar.
type Provider struct {
	g *grammar
}

// Providers returns one provider per supported grammar.
func Providers() []*Provider {
	out := make([]*Provider, 0, len(grammars))
	for _, g := range grammars {
		out = append(out, &Provider{g: g})
	}
	return out
}

// Language implements structure.Provider.
func (p *Provider) Language() string { return p.g.name }

// Extensions implements structure.Provider.
func (p *Provider) Extensions() []string { return p.g.extensions }

// Parse implements structure.Provider.
func (p *Provider) Parse(path string) (*structure.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &structure.ParseError{
			Path: path,
			Err:  fmt.Errorf("%w: %v", structure.ErrUnreadableFile, err),
		}
	}
	return p.ParseSource(path, src)
}

// ParseSource builds the unit tree for already-loaded source. Syntax
// errors inside the file are tolerated; tree-sitter recovers and the
// affected region is scored as best it can.
func (p *Provider) ParseSource(path string, src []byte) (*structure.Unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.g.language())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &structure.ParseError{
			Path: path,
			Err:  fmt.Errorf("%w: %v", structure.ErrExtractionFailed, err),
		}
	}
	defer tree.Close()

	root := &structure.Unit{
		Kind:       structure.KindFile,
		Name:       path,
		StartLine:  1,
		EndLine:    structure.LineCount(src),
		Cyclomatic: 1,
	}
	w := walker{g: p.g, src: src}
	w.children(tree.RootNode(), root, 0)
	sumChildren(root)
	return root, nil
}

type walker struct {
	g   *grammar
	src []byte
}

// unit opens a new code unit for n and scores its body. Nesting
// restarts at zero inside every unit.
func (w walker) unit(n *sitter.Node, kind structure.Kind, base float64) *structure.Unit {
	u := &structure.Unit{
		Kind:       kind,
		Name:       w.name(n),
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Cyclomatic: base,
	}
	w.children(n, u, 0)
	sumChildren(u)
	return u
}

func (w walker) children(n *sitter.Node, u *structure.Unit, nesting int) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i), u, nesting)
	}
}

func (w walker) visit(n *sitter.Node, u *structure.Unit, nesting int) {
	t := n.Type()
	if kind, ok := w.g.functions[t]; ok {
		u.Children = append(u.Children, w.unit(n, kind, 1))
		return
	}
	if w.g.containers.has(t) {
		u.Children = append(u.Children, w.unit(n, structure.KindOther, 0))
		return
	}

	if w.g.decisions.has(t) {
		u.Cyclomatic++
	}

	next := nesting
	switch {
	case w.g.nesting.has(t):
		// The if of an else-if chain is already paid for by its else.
		if parent := n.Parent(); parent != nil && w.g.hybrid.has(parent.Type()) {
			break
		}
		// Grammars without an else node hang the else-if straight off
		// the alternative field, and a bare else is the alternative.
		if isIf(t) && isAlternative(n) {
			u.Cognitive++
		} else {
			u.Cognitive += float64(1 + nesting)
			next++
		}
		if alt := n.ChildByFieldName("alternative"); isIf(t) && alt != nil && alt.Type() != t && !w.g.hybrid.has(alt.Type()) {
			u.Cognitive++
		}
	case w.g.hybrid.has(t):
		u.Cognitive++
	case w.g.logical.has(t):
		op := operator(n)
		if !logicalOps.has(op) {
			break
		}
		u.Cyclomatic++
		// a && b && c is one sequence.
		if parent := n.Parent(); parent == nil || parent.Type() != t || operator(parent) != op {
			u.Cognitive++
		}
	}
	w.children(n, u, next)
}

// name reads a unit name from the node's name field, walking C-style
// declarators, then from the binding it is assigned to.
func (w walker) name(n *sitter.Node) string {
	for cur := n; cur != nil; {
		if id := cur.ChildByFieldName("name"); id != nil {
			return id.Content(w.src)
		}
		d := cur.ChildByFieldName("declarator")
		if d == nil {
			break
		}
		if d.NamedChildCount() == 0 {
			return d.Content(w.src)
		}
		cur = d
	}

	if parent := n.Parent(); parent != nil {
		switch parent.Type() {
		case "variable_declarator", "pair", "public_field_definition", "field_definition", "let_declaration":
			for _, field := range []string{"name", "key", "property", "pattern"} {
				if id := parent.ChildByFieldName(field); id != nil {
					return id.Content(w.src)
				}
			}
		case "assignment_expression", "assignment":
			if id := parent.ChildByFieldName("left"); id != nil {
				return id.Content(w.src)
			}
		}
	}
	return anonymousName
}

func isIf(t string) bool {
	return strings.HasPrefix(t, "if_")
}

// isAlternative reports whether n is the alternative branch of a
// parent node of the same type, as an else-if is in Java.
func isAlternative(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != n.Type() {
		return false
	}
	alt := parent.ChildByFieldName("alternative")
	return alt != nil && alt.StartByte() == n.StartByte() && alt.EndByte() == n.EndByte()
}

func operator(n *sitter.Node) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	return op.Type()
}

func sumChildren(u *structure.Unit) {
	for _, c := range u.Children {
		u.Cyclomatic += c.Cyclomatic
		u.Cognitive += c.Cognitive
	}
}
