// Package pins parses the PINS export format: per-pin pad positions
// grouped under part headers, with an alternative quoted table shape
// that names the part on every line. Three line rules are tried in
// priority order; lines matching none are skipped.
package pins

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"

	"github.com/pcbflow/thtgen/pkg/asmfile"
)

// quoted captures a double-quoted token with the quotes stripped.
type quoted string

func (q *quoted) Capture(values []string) error {
	*q = quoted(strings.Trim(values[0], `"`))
	return nil
}

// partHeader starts a new part context:
//
//	Part R101 (T29)
type partHeader struct {
	Part string `parser:"\"Part\" @Ident"`
	Tag  string `parser:"LParen @Ident RParen"`
}

// tableRow names its part explicitly:
//
//	"R101","1",12.50,3.25,"Top","GND","",""
type tableRow struct {
	Part  quoted  `parser:"@String Comma"`
	Pin   quoted  `parser:"@String Comma"`
	X     float64 `parser:"@Number Comma"`
	Y     float64 `parser:"@Number Comma"`
	Layer quoted  `parser:"@String Comma"`
	Net   quoted  `parser:"@String Comma"`
	T1    quoted  `parser:"@String Comma"`
	T2    quoted  `parser:"@String"`
}

// plainRow attaches to the current part context:
//
//	1 A 12.50 3.25 0 Top
type plainRow struct {
	Pin   string  `parser:"@(Ident | Number)"`
	Skip  string  `parser:"@(Ident | Number)"`
	X     float64 `parser:"@Number"`
	Y     float64 `parser:"@Number"`
	Drill float64 `parser:"@Number"`
	Layer string  `parser:"@(Ident | Number)"`
}

// padLine is the rule set for one line, tried in priority order.
type padLine struct {
	Header *partHeader `parser:"  @@"`
	Table  *tableRow   `parser:"| @@"`
	Plain  *plainRow   `parser:"| @@"`
}

// Parser recognizes PINS records line by line.
type Parser struct {
	line *participle.Parser[padLine]
}

// NewParser builds the PINS line parser.
func NewParser() (*Parser, error) {
	line, err := participle.Build[padLine](
		participle.Lexer(padLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{line: line}, nil
}

// resolveLayer maps a layer token to its layer number. Named layers
// take precedence; anything else must parse as an integer.
func resolveLayer(tok string) (int, bool) {
	switch tok {
	case "Top":
		return 1, true
	case "Bottom":
		return 2, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}

// sideOf derives a side code from the first character of a side/type
// or layer token ("T29" -> "T", "Top" -> "T", "Bottom" -> "B"). The
// character is carried verbatim: a numeric layer token yields a
// numeric side code, matching the export's own bucket naming. Such
// buckets never match a T/B placement during cross-reference and so
// never reach the output.
func sideOf(tok string) (asmfile.Side, bool) {
	if tok == "" {
		return "", false
	}
	return asmfile.Side(tok[:1]), true
}

// Parse reads PINS records from a reader. Unrecognized lines and data
// lines with unresolvable layers are skipped; only read errors are
// fatal.
func (p *Parser) Parse(r io.Reader) (*asmfile.ParseResult, error) {
	start := time.Now()
	parts := asmfile.NewPartSet()

	var current *asmfile.PartRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line, err := p.line.ParseString("", scanner.Text())
		if err != nil {
			continue // not a PINS record
		}

		switch {
		case line.Header != nil:
			side, ok := sideOf(line.Header.Tag)
			if !ok {
				current = nil
				continue
			}
			current = parts.Touch(line.Header.Part, side)

		case line.Table != nil:
			layer, ok := resolveLayer(string(line.Table.Layer))
			if !ok {
				continue
			}
			pad := asmfile.PadPoint{
				Pin:   string(line.Table.Pin),
				X:     line.Table.X,
				Y:     line.Table.Y,
				Layer: layer,
				Net:   string(line.Table.Net),
			}
			// A table row attaches to the part it names. The layer
			// token decides the side only when the part is new.
			id := string(line.Table.Part)
			if rec, ok := parts.LookupID(id); ok {
				parts.AddPad(rec.ID, rec.Side, pad)
				continue
			}
			side, ok := sideOf(string(line.Table.Layer))
			if !ok {
				continue
			}
			parts.AddPad(id, side, pad)

		case line.Plain != nil:
			if current == nil {
				continue // data line before any part header
			}
			layer, ok := resolveLayer(line.Plain.Layer)
			if !ok {
				continue
			}
			parts.AddPad(current.ID, current.Side, asmfile.PadPoint{
				Pin:   line.Plain.Pin,
				X:     line.Plain.X,
				Y:     line.Plain.Y,
				Layer: layer,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read PINS data: %w", err)
	}

	result := &asmfile.ParseResult{
		Parts:   parts,
		OK:      parts.Len() > 0,
		Factor:  asmfile.FactorMetric,
		Elapsed: time.Since(start),
	}
	if result.OK {
		result.Message = fmt.Sprintf("recognized %d PINS parts", parts.Len())
	} else {
		result.Message = "no PINS records recognized"
	}
	return result, nil
}

// ParseString parses PINS records from a string.
func (p *Parser) ParseString(input string) (*asmfile.ParseResult, error) {
	return p.Parse(strings.NewReader(input))
}

// ParseFile parses PINS records from a file path.
func (p *Parser) ParseFile(filename string) (*asmfile.ParseResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}
