// Package pipeline sequences the generation run: validate inputs,
// parse the placement export, optionally parse the PINS export, then
// build and write the CSV artifacts. Every failure path is folded into
// the returned GenerationResult; nothing propagates to the caller as a
// panic or error.
package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pcbflow/thtgen/pkg/asmfile"
	"github.com/pcbflow/thtgen/pkg/asmfile/bom"
	"github.com/pcbflow/thtgen/pkg/asmfile/pins"
	"github.com/pcbflow/thtgen/pkg/pickplace"
)

// State tracks where a generation run is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateParsingBOM
	StateParsingPINS
	StateGenerating
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateValidating:  "validating",
	StateParsingBOM:  "parsing-bom",
	StateParsingPINS: "parsing-pins",
	StateGenerating:  "generating",
	StateDone:        "done",
	StateFailed:      "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Progress is invoked at fixed checkpoints with a percentage in
// [0,100] and a short status message.
type Progress func(percent int, message string)

// Request carries everything one generation run needs. Inputs may be
// given as file paths or raw text; text wins when both are set. An
// empty PINS input is a benign branch, not an error.
type Request struct {
	BOMPath  string
	BOMText  string
	PINSPath string
	PINSText string

	Client  string
	Program string
	Factor  float64
	OutDir  string
	Workers int
}

// GenerationResult is the terminal value of one run. OK is true iff at
// least one of the top/bottom outputs was produced.
type GenerationResult struct {
	OK       bool
	TopOK    bool
	BotOK    bool
	Message  string
	TopPaths []string
	BotPaths []string
	Elapsed  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a structured logger for debug telemetry.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithProgress attaches the UI-facing progress callback.
func WithProgress(fn Progress) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// Pipeline orchestrates generation runs. It keeps no part data between
// runs; only configuration lives on the struct.
type Pipeline struct {
	log      *zap.Logger
	progress Progress
	state    State
}

// New creates a pipeline. Without options it logs nowhere and reports
// no progress.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		log:   zap.NewNop(),
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the state the most recent run ended in.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) report(percent int, message string) {
	if p.progress != nil {
		p.progress(percent, message)
	}
}

func (p *Pipeline) fail(start time.Time, message string) *GenerationResult {
	p.state = StateFailed
	p.log.Warn("generation failed", zap.String("reason", message))
	p.report(100, message)
	return &GenerationResult{
		Message: message,
		Elapsed: time.Since(start),
	}
}

// Generate runs the full pipeline for one request.
func (p *Pipeline) Generate(req Request) (result *GenerationResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.state = StateFailed
			p.log.Error("generation panicked", zap.Any("panic", r))
			result = &GenerationResult{
				Message: fmt.Sprintf("internal error: %v", r),
				Elapsed: time.Since(start),
			}
		}
	}()

	p.state = StateValidating
	p.report(0, "validating inputs")
	if req.Program == "" {
		return p.fail(start, "program identifier is empty")
	}
	factor := req.Factor
	if factor == 0 {
		factor = asmfile.FactorMetric
	}

	p.state = StateParsingBOM
	p.report(10, "parsing placement data")
	bomResult, err := parsePlacement(req)
	if err != nil {
		return p.fail(start, fmt.Sprintf("placement parse failed: %v", err))
	}
	bomResult.Factor = factor
	if bomResult.Parts.Len() == 0 {
		return p.fail(start, "no placement data recognized in BOM input")
	}
	p.log.Debug("parsed placement data",
		zap.Int("parts", bomResult.Parts.Len()),
		zap.Int("points", bomResult.Parts.PointCount()),
		zap.Duration("elapsed", bomResult.Elapsed))

	var pinParts *asmfile.PartSet
	if hasPINS(req) {
		p.state = StateParsingPINS
		p.report(30, "parsing PINS data")
		pinsResult, err := parsePads(req)
		if err != nil {
			return p.fail(start, fmt.Sprintf("PINS parse failed: %v", err))
		}
		pinParts = pinsResult.Parts
		p.log.Debug("parsed PINS data",
			zap.Int("parts", pinParts.Len()),
			zap.Int("points", pinParts.PointCount()),
			zap.Duration("elapsed", pinsResult.Elapsed))
	} else {
		p.log.Debug("no PINS input, skipping pad-level output")
	}

	p.state = StateGenerating
	p.report(50, "generating CSV lines")
	emitter := &pickplace.Emitter{
		Client:  req.Client,
		Program: req.Program,
		Factor:  factor,
		OutDir:  req.OutDir,
		Workers: req.Workers,
	}
	artifacts, err := emitter.Build(bomResult.Parts, pinParts)
	if err != nil {
		return p.fail(start, fmt.Sprintf("generation failed: %v", err))
	}

	p.report(70, "writing output files")
	output, err := emitter.Write(artifacts)
	if err != nil {
		return p.fail(start, fmt.Sprintf("write failed: %v", err))
	}

	p.state = StateDone
	result = &GenerationResult{
		OK:       output.TopOK || output.BotOK,
		TopOK:    output.TopOK,
		BotOK:    output.BotOK,
		Message:  outcomeMessage(output),
		TopPaths: output.TopPaths,
		BotPaths: output.BotPaths,
		Elapsed:  time.Since(start),
	}
	if !result.OK {
		p.state = StateFailed
	}
	p.log.Info("generation finished",
		zap.Bool("top", result.TopOK),
		zap.Bool("bot", result.BotOK),
		zap.Duration("elapsed", result.Elapsed))
	p.report(100, result.Message)
	return result
}

func outcomeMessage(out *pickplace.Output) string {
	switch {
	case out.TopOK && out.BotOK:
		return "generated top and bottom outputs"
	case out.TopOK:
		return "generated top outputs only"
	case out.BotOK:
		return "generated bottom outputs only"
	default:
		return "no output produced"
	}
}

// hasPINS reports whether the request carries PINS input. A "-" path
// is the placeholder the UI passes for "no file selected".
func hasPINS(req Request) bool {
	if req.PINSText != "" {
		return true
	}
	return req.PINSPath != "" && req.PINSPath != "-"
}

func parsePlacement(req Request) (*asmfile.ParseResult, error) {
	parser, err := bom.NewParser()
	if err != nil {
		return nil, err
	}
	if req.BOMText != "" {
		return parser.ParseString(req.BOMText)
	}
	if req.BOMPath == "" {
		return nil, fmt.Errorf("no BOM input supplied")
	}
	if _, err := os.Stat(req.BOMPath); err != nil {
		return nil, fmt.Errorf("BOM file not readable: %w", err)
	}
	return parser.ParseFile(req.BOMPath)
}

func parsePads(req Request) (*asmfile.ParseResult, error) {
	parser, err := pins.NewParser()
	if err != nil {
		return nil, err
	}
	if req.PINSText != "" {
		return parser.ParseString(req.PINSText)
	}
	return parser.ParseFile(req.PINSPath)
}
