package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/unbound-force/wcc/internal/structure"
)

// grammar describes how to read units and complexity out of one
// tree-sitter grammar.
type grammar struct {
	name       string
	extensions []string
	language   func() *sitter.Language

	// functions maps function-like node types to the unit kind they
	// open. Function units start with a base complexity of 1.
	functions map[string]structure.Kind

	// containers are scopes (classes, impls, namespaces) that open a
	// unit with no base complexity.
	containers set

	// decisions are node types adding one cyclomatic path.
	decisions set

	// nesting are node types that add 1 + nesting to cognitive
	// complexity and nest their children one level deeper.
	nesting set

	// hybrid are node types that add 1 to cognitive complexity
	// without nesting (else, elif).
	hybrid set

	// logical are node types holding a binary operator. They count
	// only when the operator is one of logicalOps.
	logical set
}

type set map[string]struct{}

func newSet(items ...string) set {
	s := make(set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s set) has(t string) bool {
	_, ok := s[t]
	return ok
}

var logicalOps = newSet("&&", "||", "??", "and", "or")

var cFamilyDecisions = newSet(
	"if_statement", "for_statement", "while_statement", "do_statement",
	"case_statement", "conditional_expression", "catch_clause", "for_range_loop",
)

var cFamilyNesting = newSet(
	"if_statement", "for_statement", "while_statement", "do_statement",
	"switch_statement", "conditional_expression", "catch_clause", "for_range_loop",
)

var jsFunctions = map[string]structure.Kind{
	"function_declaration":           structure.KindFunction,
	"generator_function_declaration": structure.KindFunction,
	"method_definition":              structure.KindFunction,
	"function":                       structure.KindFunction,
	"function_expression":            structure.KindFunction,
	"generator_function":             structure.KindFunction,
	"arrow_function":                 structure.KindFunction,
}

var jsDecisions = newSet(
	"if_statement", "for_statement", "for_in_statement", "while_statement",
	"do_statement", "switch_case", "catch_clause", "ternary_expression",
)

var jsNesting = newSet(
	"if_statement", "for_statement", "for_in_statement", "while_statement",
	"do_statement", "switch_statement", "catch_clause", "ternary_expression",
)

var grammars = []*grammar{
	{
		name:       "python",
		extensions: []string{".py"},
		language:   python.GetLanguage,
		functions: map[string]structure.Kind{
			"function_definition": structure.KindFunction,
			"lambda":              structure.KindOther,
		},
		containers: newSet("class_definition"),
		decisions: newSet(
			"if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "conditional_expression", "for_in_clause",
			"if_clause", "case_clause",
		),
		nesting: newSet(
			"if_statement", "for_statement", "while_statement", "except_clause",
			"conditional_expression", "match_statement",
		),
		hybrid:  newSet("elif_clause", "else_clause"),
		logical: newSet("boolean_operator"),
	},
	{
		name:       "javascript",
		extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".jsm"},
		language:   javascript.GetLanguage,
		functions:  jsFunctions,
		containers: newSet("class_declaration", "class"),
		decisions:  jsDecisions,
		nesting:    jsNesting,
		hybrid:     newSet("else_clause"),
		logical:    newSet("binary_expression"),
	},
	{
		name:       "typescript",
		extensions: []string{".ts"},
		language:   typescript.GetLanguage,
		functions:  jsFunctions,
		containers: tsContainers,
		decisions:  jsDecisions,
		nesting:    jsNesting,
		hybrid:     newSet("else_clause"),
		logical:    newSet("binary_expression"),
	},
	{
		name:       "tsx",
		extensions: []string{".tsx"},
		language:   tsx.GetLanguage,
		functions:  jsFunctions,
		containers: tsContainers,
		decisions:  jsDecisions,
		nesting:    jsNesting,
		hybrid:     newSet("else_clause"),
		logical:    newSet("binary_expression"),
	},
	{
		name:       "java",
		extensions: []string{".java"},
		language:   java.GetLanguage,
		functions: map[string]structure.Kind{
			"method_declaration":      structure.KindFunction,
			"constructor_declaration": structure.KindFunction,
			"lambda_expression":       structure.KindFunction,
		},
		containers: newSet("class_declaration", "interface_declaration", "enum_declaration"),
		decisions: newSet(
			"if_statement", "for_statement", "enhanced_for_statement",
			"while_statement", "do_statement", "switch_label", "catch_clause",
			"ternary_expression",
		),
		nesting: newSet(
			"if_statement", "for_statement", "enhanced_for_statement",
			"while_statement", "do_statement", "switch_expression",
			"catch_clause", "ternary_expression",
		),
		hybrid:  newSet(),
		logical: newSet("binary_expression"),
	},
	{
		name:       "rust",
		extensions: []string{".rs"},
		language:   rust.GetLanguage,
		functions: map[string]structure.Kind{
			"function_item":      structure.KindFunction,
			"closure_expression": structure.KindFunction,
		},
		containers: newSet("impl_item", "trait_item", "mod_item"),
		decisions: newSet(
			"if_expression", "for_expression", "while_expression",
			"loop_expression", "match_arm", "try_expression",
		),
		nesting: newSet(
			"if_expression", "for_expression", "while_expression",
			"loop_expression", "match_expression",
		),
		hybrid:  newSet("else_clause"),
		logical: newSet("binary_expression"),
	},
	{
		name:       "c",
		extensions: []string{".c", ".h"},
		language:   c.GetLanguage,
		functions: map[string]structure.Kind{
			"function_definition": structure.KindFunction,
		},
		containers: newSet(),
		decisions:  cFamilyDecisions,
		nesting:    cFamilyNesting,
		hybrid:     newSet("else_clause"),
		logical:    newSet("binary_expression"),
	},
	{
		name:       "cpp",
		extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		language:   cpp.GetLanguage,
		functions: map[string]structure.Kind{
			"function_definition": structure.KindFunction,
			"lambda_expression":   structure.KindFunction,
		},
		containers: newSet("class_specifier", "struct_specifier", "namespace_definition"),
		decisions:  cFamilyDecisions,
		nesting:    cFamilyNesting,
		hybrid:     newSet("else_clause"),
		logical:    newSet("binary_expression"),
	},
}

var tsContainers = newSet(
	"class_declaration", "class", "abstract_class_declaration", "interface_declaration",
)
