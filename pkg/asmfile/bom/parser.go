// Package bom parses the placement ("BOM") export format: one
// semicolon-terminated record per line describing a component position.
// Lines that do not match the record pattern (headers, commentary,
// blank lines) are skipped, which the export format relies on.
package bom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"

	"github.com/pcbflow/thtgen/pkg/asmfile"
)

// quoted captures a single-quoted token with the quotes stripped.
type quoted string

func (q *quoted) Capture(values []string) error {
	*q = quoted(strings.Trim(values[0], "'"))
	return nil
}

// placementRecord is the grammar for one placement line:
// part id, x, y, rotation, grid, (side), size, shape, 'device', 'outline';
type placementRecord struct {
	Part     string  `parser:"@Ident"`
	X        float64 `parser:"@Number"`
	Y        float64 `parser:"@Number"`
	Rotation float64 `parser:"@Number"`
	Grid     string  `parser:"@Ident"`
	Side     string  `parser:"LParen @Ident RParen"`
	Size     float64 `parser:"@Number"`
	Shape    string  `parser:"@Ident"`
	Device   quoted  `parser:"@String"`
	Outline  quoted  `parser:"@String Semicolon"`
}

// Shapes retained for output; everything else is surface-mount and
// handled by other equipment.
var retainedShapes = map[string]bool{
	"PTH":    true,
	"RADIAL": true,
}

// Device markers for unpopulated positions. Comparison is case-sensitive,
// matching the export tool's own spelling variants.
var notLoadedDevices = map[string]bool{
	"NOT_LOADED": true,
	"NOT_LOAD":   true,
	"NO_LOADED":  true,
	"NO_LOAD":    true,
}

// Parser recognizes placement records line by line.
type Parser struct {
	record *participle.Parser[placementRecord]
}

// NewParser builds the placement record parser.
func NewParser() (*Parser, error) {
	record, err := participle.Build[placementRecord](
		participle.Lexer(placementLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{record: record}, nil
}

// Parse reads placement records from a reader. Unrecognized lines are
// skipped; only read errors are fatal.
func (p *Parser) Parse(r io.Reader) (*asmfile.ParseResult, error) {
	start := time.Now()
	parts := asmfile.NewPartSet()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rec, err := p.record.ParseString("", scanner.Text())
		if err != nil {
			continue // not a placement record
		}
		if !retainedShapes[rec.Shape] || notLoadedDevices[string(rec.Device)] {
			continue
		}
		parts.AddPlacement(rec.Part, asmfile.Side(rec.Side), asmfile.PlacementPoint{
			X:        rec.X,
			Y:        rec.Y,
			Rotation: rec.Rotation,
			Grid:     rec.Grid,
			Shape:    rec.Shape,
			Device:   string(rec.Device),
			Outline:  string(rec.Outline),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read placement data: %w", err)
	}

	result := &asmfile.ParseResult{
		Parts:   parts,
		OK:      parts.Len() > 0,
		Factor:  asmfile.FactorMetric,
		Elapsed: time.Since(start),
	}
	if result.OK {
		result.Message = fmt.Sprintf("recognized %d placement parts", parts.Len())
	} else {
		result.Message = "no placement records recognized"
	}
	return result, nil
}

// ParseString parses placement records from a string.
func (p *Parser) ParseString(input string) (*asmfile.ParseResult, error) {
	return p.Parse(strings.NewReader(input))
}

// ParseFile parses placement records from a file path.
func (p *Parser) ParseFile(filename string) (*asmfile.ParseResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}
