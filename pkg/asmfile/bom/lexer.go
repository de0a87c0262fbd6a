package bom

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// placementLexer defines the token structure of one placement record.
// Records are whitespace-separated tokens terminated by a semicolon;
// device and outline names are single-quoted.
var placementLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},

	{Name: "String", Pattern: `'[^']*'`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_./+-]*`},

	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Semicolon", Pattern: `;`},
})
