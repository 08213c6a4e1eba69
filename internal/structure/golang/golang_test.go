package golang

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/unbound-force/wcc/internal/structure"
)

const sample = `package sample

func Simple() int {
	return 1
}

func Branchy(x int) int {
	if x > 0 && x < 10 {
		return 1
	}
	for i := 0; i < x; i++ {
		x--
	}
	return x
}

type Store struct{}

func (s *Store) Save() func() bool {
	return func() bool {
		if s == nil {
			return false
		}
		return true
	}
}

var handler = func() {}
`

func parseSample(t *testing.T) *structure.Unit {
	t.Helper()
	root, err := ParseSource("sample.go", []byte(sample))
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	return root
}

func findChild(u *structure.Unit, name string) *structure.Unit {
	for _, c := range u.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestParseSource_RootSpansFile(t *testing.T) {
	root := parseSample(t)
	if root.Kind != structure.KindFile {
		t.Errorf("root kind = %q, want file", root.Kind)
	}
	if root.StartLine != 1 || root.EndLine != 28 {
		t.Errorf("root range = %d-%d, want 1-28", root.StartLine, root.EndLine)
	}
	if len(root.Children) != 4 {
		t.Fatalf("root has %d children, want 4", len(root.Children))
	}
}

func TestParseSource_FunctionRanges(t *testing.T) {
	root := parseSample(t)
	cases := []struct {
		name       string
		start, end int
	}{
		{"Simple", 3, 5},
		{"Branchy", 7, 15},
		{"(*Store).Save", 19, 26},
	}
	for _, tc := range cases {
		u := findChild(root, tc.name)
		if u == nil {
			t.Errorf("missing unit %q", tc.name)
			continue
		}
		if u.Kind != structure.KindFunction {
			t.Errorf("%s kind = %q, want function", tc.name, u.Kind)
		}
		if u.StartLine != tc.start || u.EndLine != tc.end {
			t.Errorf("%s range = %d-%d, want %d-%d",
				tc.name, u.StartLine, u.EndLine, tc.start, tc.end)
		}
	}
}

func TestParseSource_Complexity(t *testing.T) {
	root := parseSample(t)

	simple := findChild(root, "Simple")
	if simple.Cyclomatic != 1 || simple.Cognitive != 0 {
		t.Errorf("Simple complexity = %v/%v, want 1/0", simple.Cyclomatic, simple.Cognitive)
	}

	// if (+1) && (+1) for (+1)
	branchy := findChild(root, "Branchy")
	if branchy.Cyclomatic != 4 {
		t.Errorf("Branchy cyclomatic = %v, want 4", branchy.Cyclomatic)
	}
	if branchy.Cognitive != 3 {
		t.Errorf("Branchy cognitive = %v, want 3", branchy.Cognitive)
	}
}

func TestParseSource_LiteralNestedUnderFunction(t *testing.T) {
	root := parseSample(t)
	save := findChild(root, "(*Store).Save")
	if len(save.Children) != 1 {
		t.Fatalf("Save has %d children, want 1", len(save.Children))
	}
	lit := save.Children[0]
	if lit.Kind != structure.KindOther || lit.Name != literalName {
		t.Errorf("literal = %s %q, want other %q", lit.Kind, lit.Name, literalName)
	}
	if lit.StartLine != 20 || lit.EndLine != 25 {
		t.Errorf("literal range = %d-%d, want 20-25", lit.StartLine, lit.EndLine)
	}
	if lit.Cyclomatic != 2 {
		t.Errorf("literal cyclomatic = %v, want 2", lit.Cyclomatic)
	}
	// Own base 1 plus the literal's sum.
	if save.Cyclomatic != 3 {
		t.Errorf("Save cyclomatic = %v, want 3", save.Cyclomatic)
	}
}

func TestParseSource_PackageLevelLiteral(t *testing.T) {
	root := parseSample(t)
	last := root.Children[len(root.Children)-1]
	if last.Name != literalName || last.StartLine != 28 {
		t.Errorf("last child = %q at %d, want %q at 28", last.Name, last.StartLine, literalName)
	}
}

func TestParseSource_RootSumsChildren(t *testing.T) {
	root := parseSample(t)
	want := 1.0
	for _, c := range root.Children {
		want += c.Cyclomatic
	}
	if root.Cyclomatic != want {
		t.Errorf("root cyclomatic = %v, want %v", root.Cyclomatic, want)
	}
}

func TestParseSource_SyntaxError(t *testing.T) {
	_, err := ParseSource("bad.go", []byte("package bad\nfunc {"))
	if !errors.Is(err, structure.ErrExtractionFailed) {
		t.Errorf("error = %v, want ErrExtractionFailed", err)
	}
}

func TestProvider_Parse_MissingFile(t *testing.T) {
	_, err := NewProvider().Parse(filepath.Join(t.TempDir(), "missing.go"))
	if !errors.Is(err, structure.ErrUnreadableFile) {
		t.Errorf("error = %v, want ErrUnreadableFile", err)
	}
}

func TestProvider_Parse_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.go")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	root, err := NewProvider().Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Name != path {
		t.Errorf("root name = %q, want %q", root.Name, path)
	}
}

func TestRecvTypeString(t *testing.T) {
	src := "package p\ntype T[K any] struct{}\nfunc (t *T[K]) M() {}\n"
	root, err := ParseSource("p.go", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.Children[0].Name; got != "(*T[K]).M" {
		t.Errorf("name = %q, want (*T[K]).M", got)
	}
}

func TestParseSource_SameLineLiteralsAttributeToFirst(t *testing.T) {
	src := "package p\n\nvar fs = []func(){func() {}, func() {}}\n"
	root, err := ParseSource("p.go", []byte(src))
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	for i, c := range root.Children {
		if c.StartLine != 3 || c.EndLine != 3 {
			t.Errorf("literal %d range = %d-%d, want 3-3", i, c.StartLine, c.EndLine)
		}
	}
	if got := root.Innermost(2); got != root.Children[0] {
		t.Errorf("Innermost(2) = %p, want the first literal %p", got, root.Children[0])
	}
}
