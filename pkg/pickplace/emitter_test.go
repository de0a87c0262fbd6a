package pickplace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pcbflow/thtgen/pkg/asmfile"
)

func TestPlacementRowFormat(t *testing.T) {
	p := asmfile.PlacementPoint{X: 1.0, Y: 2.0, Rotation: 90, Device: "DIO797"}

	row := placementRow(p, "ACME", 25.4)
	want := "DIO797,25.40,50.80,90.00,ACME-DIO797,ACME-DIO797"
	if row != want {
		t.Errorf("placementRow = %q, want %q", row, want)
	}
}

func TestPlacementRowDeviceFallback(t *testing.T) {
	p := asmfile.PlacementPoint{X: 1, Y: 1, Rotation: 0}

	row := placementRow(p, "ACME", 1.0)
	if !strings.HasPrefix(row, DevicePlaceholder+",") {
		t.Errorf("Expected device placeholder prefix, got %q", row)
	}
	if !strings.Contains(row, "ACME-"+DevicePlaceholder) {
		t.Errorf("Expected placeholder in program id, got %q", row)
	}
}

func TestPadRowFormat(t *testing.T) {
	pair := PadPair{
		Placement: asmfile.PlacementPoint{Device: "DIO797"},
		Pad:       asmfile.PadPoint{Pin: "2", X: 1.0, Y: 2.0, Layer: 1},
	}

	row := padRow("R1", pair, "ACME", 25.4)
	want := "R1.2,25.40,50.80,0,ACME-DIO797,THD"
	if row != want {
		t.Errorf("padRow = %q, want %q", row, want)
	}
}

// Pins the rounding behavior of the two-decimal format: %.2f rounds
// the binary float64 value, and the nearest float64 to 1.005 is just
// below it, so it formats as 1.00.
func TestTwoDecimalRounding(t *testing.T) {
	tests := []struct {
		x    float64
		want string
	}{
		{1.005, "1.00"},
		{1.015, "1.01"},
		{2.675, "2.67"},
		{1.0, "1.00"},
		{-3.755, "-3.75"},
	}

	for _, tt := range tests {
		row := placementRow(asmfile.PlacementPoint{X: tt.x, Device: "D"}, "C", 1.0)
		fields := strings.Split(row, ",")
		if fields[1] != tt.want {
			t.Errorf("x=%v formatted as %q, want %q", tt.x, fields[1], tt.want)
		}
	}
}

func TestFactorOneKeepsMagnitude(t *testing.T) {
	row := placementRow(asmfile.PlacementPoint{X: 12.5, Y: -3.75, Rotation: 180, Device: "D"}, "C", 1.0)
	want := "D,12.50,-3.75,180.00,C-D,C-D"
	if row != want {
		t.Errorf("placementRow = %q, want %q", row, want)
	}
}

func TestBuildAndWritePlacementOnly(t *testing.T) {
	bomSet := asmfile.NewPartSet()
	bomSet.AddPlacement("R1", asmfile.SideTop, asmfile.PlacementPoint{X: 1, Y: 2, Rotation: 0, Device: "D1"})
	bomSet.AddPlacement("C1", asmfile.SideBottom, asmfile.PlacementPoint{X: 3, Y: 4, Rotation: 90, Device: "D2"})

	dir := t.TempDir()
	e := &Emitter{Client: "ACME", Program: "X100", Factor: 1.0, OutDir: dir, Workers: 2}

	arts, err := e.Build(bomSet, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out, err := e.Write(arts)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !out.TopOK {
		t.Error("Expected TopOK")
	}
	if out.BotOK {
		t.Error("Expected no BOT output without PINS data")
	}
	if len(out.TopPaths) != 2 {
		t.Fatalf("Expected 2 TOP files, got %d: %v", len(out.TopPaths), out.TopPaths)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected exactly 2 files in output dir, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, "X100_faza1_TOP.csv"))
	if err != nil {
		t.Fatalf("faza1 TOP file missing: %v", err)
	}
	if string(data) != "D1,1.00,2.00,0.00,ACME-D1,ACME-D1\n" {
		t.Errorf("Unexpected faza1 TOP content: %q", string(data))
	}

	data, err = os.ReadFile(filepath.Join(dir, "X100_faza2_TOP.csv"))
	if err != nil {
		t.Fatalf("faza2 TOP file missing: %v", err)
	}
	if string(data) != "D2,3.00,4.00,90.00,ACME-D2,ACME-D2\n" {
		t.Errorf("Unexpected faza2 TOP content: %q", string(data))
	}
}

func TestBuildWithCrossReference(t *testing.T) {
	bomSet := asmfile.NewPartSet()
	bomSet.AddPlacement("R1", asmfile.SideTop, asmfile.PlacementPoint{X: 10, Y: 10, Device: "DIO"})

	pinsSet := asmfile.NewPartSet()
	pinsSet.AddPad("R1", asmfile.SideTop, asmfile.PadPoint{Pin: "1", X: 1.0, Y: 2.0, Layer: 1})
	pinsSet.AddPad("R1", asmfile.SideTop, asmfile.PadPoint{Pin: "2", X: 3.0, Y: 4.0, Layer: 1})

	dir := t.TempDir()
	e := &Emitter{Client: "ACME", Program: "X100", Factor: 25.4, OutDir: dir}

	arts, err := e.Build(bomSet, pinsSet)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	lines := arts.Lines(asmfile.SideTop, true)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 pad lines, got %d", len(lines))
	}
	if lines[0] != "R1.1,25.40,50.80,0,ACME-DIO,THD" {
		t.Errorf("Unexpected pad line: %q", lines[0])
	}
	if lines[1] != "R1.2,76.20,101.60,0,ACME-DIO,THD" {
		t.Errorf("Unexpected pad line: %q", lines[1])
	}

	out, err := e.Write(arts)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !out.BotOK {
		t.Error("Expected BotOK")
	}
	if len(out.BotPaths) != 1 || filepath.Base(out.BotPaths[0]) != "X100_faza1_BOT.csv" {
		t.Errorf("Unexpected BOT paths: %v", out.BotPaths)
	}
}

func TestEmptyClientUsesPlaceholder(t *testing.T) {
	bomSet := asmfile.NewPartSet()
	bomSet.AddPlacement("R1", asmfile.SideTop, asmfile.PlacementPoint{X: 1, Device: "D"})

	e := &Emitter{Program: "X100", OutDir: t.TempDir()}
	arts, err := e.Build(bomSet, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	lines := arts.Lines(asmfile.SideTop, false)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], ClientPlaceholder+"-D") {
		t.Errorf("Expected client placeholder in program id: %q", lines[0])
	}
}

// Output must be ordered by source part index regardless of worker
// completion order.
func TestDeterministicRowOrder(t *testing.T) {
	bomSet := asmfile.NewPartSet()
	ids := []string{"R9", "R3", "R7", "R1", "R5"}
	for i, id := range ids {
		bomSet.AddPlacement(id, asmfile.SideTop, asmfile.PlacementPoint{X: float64(i), Device: id})
	}

	e := &Emitter{Client: "C", Program: "P", Workers: 4, OutDir: t.TempDir()}

	var first []string
	for run := 0; run < 10; run++ {
		arts, err := e.Build(bomSet, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		lines := arts.Lines(asmfile.SideTop, false)
		if len(lines) != len(ids) {
			t.Fatalf("Expected %d lines, got %d", len(ids), len(lines))
		}
		for i, id := range ids {
			if !strings.HasPrefix(lines[i], id+",") {
				t.Fatalf("run %d: line %d = %q, want part %s (source order)", run, i, lines[i], id)
			}
		}
		if first == nil {
			first = lines
		}
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		side asmfile.Side
		pads bool
		want string
	}{
		{asmfile.SideTop, false, "X1_faza1_TOP.csv"},
		{asmfile.SideBottom, false, "X1_faza2_TOP.csv"},
		{asmfile.SideTop, true, "X1_faza1_BOT.csv"},
		{asmfile.SideBottom, true, "X1_faza2_BOT.csv"},
	}

	for _, tt := range tests {
		if got := artifactName("X1", tt.side, tt.pads); got != tt.want {
			t.Errorf("artifactName(X1, %s, %v) = %q, want %q", tt.side, tt.pads, got, tt.want)
		}
	}
}

func TestWriteFailureSurfacesError(t *testing.T) {
	bomSet := asmfile.NewPartSet()
	bomSet.AddPlacement("R1", asmfile.SideTop, asmfile.PlacementPoint{X: 1, Device: "D"})

	e := &Emitter{Client: "C", Program: "P", OutDir: filepath.Join(t.TempDir(), "does", "not", "exist")}
	arts, err := e.Build(bomSet, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := e.Write(arts); err == nil {
		t.Error("Expected write error for missing output directory")
	}
}
