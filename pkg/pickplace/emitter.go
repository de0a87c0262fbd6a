package pickplace

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pcbflow/thtgen/pkg/asmfile"
)

// Placeholders written when the caller leaves a field empty or the
// source record carried no device name.
const (
	ClientPlaceholder = "UNSET"
	DevicePlaceholder = "NODEV"
)

// padDeviceTag marks pad-level rows as through-hole device positions.
const padDeviceTag = "THD"

// artifactKey selects one of the four output accumulators: placement
// or pad rows, for side T or B.
type artifactKey struct {
	side asmfile.Side
	pads bool
}

// block is one part's contribution to an artifact. The order field is
// the part's index in source order; rows are sorted by it before
// writing so output is reproducible across runs.
type block struct {
	order int
	lines []string
}

// accumulator collects blocks from the workers. The mutex guards only
// the append; everything else a worker touches is local to it.
type accumulator struct {
	mu     sync.Mutex
	blocks []block
}

func (a *accumulator) append(b block) {
	a.mu.Lock()
	a.blocks = append(a.blocks, b)
	a.mu.Unlock()
}

// sorted flattens the blocks into lines ordered by source part index.
func (a *accumulator) sorted() []string {
	sort.Slice(a.blocks, func(i, j int) bool {
		return a.blocks[i].order < a.blocks[j].order
	})
	var lines []string
	for _, b := range a.blocks {
		lines = append(lines, b.lines...)
	}
	return lines
}

// Artifacts holds the generated CSV lines for all four outputs prior
// to writing.
type Artifacts struct {
	acc map[artifactKey]*accumulator
}

func newArtifacts() *Artifacts {
	acc := make(map[artifactKey]*accumulator)
	for _, side := range []asmfile.Side{asmfile.SideTop, asmfile.SideBottom} {
		for _, pads := range []bool{false, true} {
			acc[artifactKey{side, pads}] = &accumulator{}
		}
	}
	return &Artifacts{acc: acc}
}

func (a *Artifacts) get(side asmfile.Side, pads bool) *accumulator {
	return a.acc[artifactKey{side, pads}]
}

// Lines returns the ordered lines for one artifact. Exposed for the
// inspect command and tests.
func (a *Artifacts) Lines(side asmfile.Side, pads bool) []string {
	if acc, ok := a.acc[artifactKey{side, pads}]; ok {
		return acc.sorted()
	}
	return nil
}

// Output reports which files were written.
type Output struct {
	TopPaths []string
	BotPaths []string
	TopOK    bool
	BotOK    bool
}

// Emitter serializes a part model into manufacturing CSV files.
type Emitter struct {
	Client  string
	Program string
	Factor  float64
	OutDir  string
	Workers int
}

// Build constructs the CSV lines for all artifacts. Parts fan out over
// a bounded worker group; each worker builds its part's lines locally
// and appends them to the shared accumulator in one locked step.
func (e *Emitter) Build(bom *asmfile.PartSet, pins *asmfile.PartSet) (*Artifacts, error) {
	client := e.Client
	if client == "" {
		client = ClientPlaceholder
	}
	factor := e.Factor
	if factor == 0 {
		factor = asmfile.FactorMetric
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	resolver := NewResolver(pins)
	arts := newArtifacts()

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, part := range bom.Parts() {
		i, part := i, part
		g.Go(func() error {
			lines := make([]string, 0, len(part.Placements))
			for _, pl := range part.Placements {
				lines = append(lines, placementRow(pl, client, factor))
			}
			if len(lines) > 0 {
				arts.get(part.Side, false).append(block{order: i, lines: lines})
			}

			pairs := resolver.Resolve(part)
			if len(pairs) == 0 {
				return nil
			}
			padLines := make([]string, 0, len(pairs))
			for _, pair := range pairs {
				padLines = append(padLines, padRow(part.ID, pair, client, factor))
			}
			arts.get(part.Side, true).append(block{order: i, lines: padLines})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return arts, nil
}

// Write writes every non-empty artifact to the output directory. Empty
// sides produce no file. Fails on the first I/O error.
func (e *Emitter) Write(arts *Artifacts) (*Output, error) {
	out := &Output{}
	for _, side := range []asmfile.Side{asmfile.SideTop, asmfile.SideBottom} {
		for _, pads := range []bool{false, true} {
			lines := arts.get(side, pads).sorted()
			if len(lines) == 0 {
				continue
			}
			name := artifactName(e.Program, side, pads)
			path := filepath.Join(e.OutDir, name)
			data := strings.Join(lines, "\n") + "\n"
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", name, err)
			}
			if pads {
				out.BotPaths = append(out.BotPaths, path)
				out.BotOK = true
			} else {
				out.TopPaths = append(out.TopPaths, path)
				out.TopOK = true
			}
		}
	}
	return out, nil
}

// artifactName builds the fixed output file name: faza1/faza2 map to
// sides T/B, TOP/BOT to the placement and pad row formats.
func artifactName(program string, side asmfile.Side, pads bool) string {
	faza := "faza1"
	if side == asmfile.SideBottom {
		faza = "faza2"
	}
	suffix := "TOP"
	if pads {
		suffix = "BOT"
	}
	return fmt.Sprintf("%s_%s_%s.csv", program, faza, suffix)
}

// placementRow formats one placement line. Coordinates are scaled by
// the unit factor; rotation is not.
func placementRow(p asmfile.PlacementPoint, client string, factor float64) string {
	device := p.Device
	if device == "" {
		device = DevicePlaceholder
	}
	progID := client + "-" + device
	return fmt.Sprintf("%s,%.2f,%.2f,%.2f,%s,%s",
		device, p.X*factor, p.Y*factor, p.Rotation, progID, progID)
}

// padRow formats one pad line for the cross-referenced output.
func padRow(partID string, pair PadPair, client string, factor float64) string {
	device := pair.Placement.Device
	if device == "" {
		device = DevicePlaceholder
	}
	progID := client + "-" + device
	return fmt.Sprintf("%s.%s,%.2f,%.2f,0,%s,%s",
		partID, pair.Pad.Pin, pair.Pad.X*factor, pair.Pad.Y*factor, progID, padDeviceTag)
}
