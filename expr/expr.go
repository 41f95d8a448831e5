// Package expr parses and evaluates final-row formula expressions: literals
// and header scalars combined with aggregate calls over a row-set, e.g.
// "sum(items.qty * items.price) - header.discount". A formula is parsed
// once into a typed AST when the template loads and evaluated against the
// run's data; there is no dynamic code execution.
package expr

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/().]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Expr](
	participle.Lexer(formulaLexer),
	participle.Elide("Whitespace"),
)

// Expr is the root of a parsed formula: a left-associative chain of
// additive terms.
type Expr struct {
	Left *Term     `parser:"@@"`
	Rest []*OpTerm `parser:"@@*"`
}

// OpTerm is one "+ term" or "- term" continuation.
type OpTerm struct {
	Op   string `parser:"@('+' | '-')"`
	Term *Term  `parser:"@@"`
}

// Term is a left-associative chain of multiplicative factors.
type Term struct {
	Left *Factor     `parser:"@@"`
	Rest []*OpFactor `parser:"@@*"`
}

// OpFactor is one "* factor" or "/ factor" continuation.
type OpFactor struct {
	Op     string  `parser:"@('*' | '/')"`
	Factor *Factor `parser:"@@"`
}

// Factor is a primary value: an aggregate call, a dotted field reference, a
// numeric literal, or a parenthesized subexpression, optionally negated.
type Factor struct {
	Neg    bool     `parser:"@'-'?"`
	Call   *Call    `parser:"( @@"`
	Ref    *Ref     `parser:"| @@"`
	Number *float64 `parser:"| @Number"`
	Sub    *Expr    `parser:"| '(' @@ ')' )"`
}

// Call is an aggregate function applied to an expression evaluated per row
// of one row-set.
type Call struct {
	Func string `parser:"@('sum' | 'avg' | 'count' | 'min' | 'max')"`
	Arg  *Expr  `parser:"'(' @@ ')'"`
}

// Ref is a dotted path: "header.discount", "items.price", or a bare
// row-set name inside count().
type Ref struct {
	Path []string `parser:"@Ident ('.' @Ident)*"`
}

// Parse parses a formula into its AST.
func Parse(input string) (*Expr, error) {
	e, err := parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("expr: parsing %q: %w", input, err)
	}
	return e, nil
}
