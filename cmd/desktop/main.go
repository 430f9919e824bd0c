package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/SteveSapuko/mycc/pkg/compiler"
	"github.com/SteveSapuko/mycc/pkg/cpu"
	"github.com/SteveSapuko/mycc/pkg/utils"
)

const (
	screenWidth  = 800
	screenHeight = 480
	lineHeight   = 16
)

// Game steps a compiled program on the simulator and shows the machine
// next to the listing.
type Game struct {
	vm       *cpu.CPU
	res      *compiler.Result
	listing  []string
	running  bool
	perFrame int
	snapshot string
	status   string
	face     text.Face
}

func newGame(res *compiler.Result, input []byte, perFrame int, snapshot string) *Game {
	g := &Game{
		res:      res,
		listing:  strings.Split(strings.TrimRight(res.Listing, "\n"), "\n"),
		perFrame: perFrame,
		snapshot: snapshot,
		face:     text.NewGoXFace(basicfont.Face7x13),
	}
	g.reset(input)
	return g
}

func (g *Game) reset(input []byte) {
	g.vm = cpu.New(g.res.Linked)
	g.vm.Input = append([]byte(nil), input...)
	g.running = false
	g.status = "space: run/pause  n: step  r: reset  p: snapshot"
}

// step runs up to n ops and stops the clock on halt or error.
func (g *Game) step(n int) {
	for i := 0; i < n && !g.vm.Halted; i++ {
		if err := g.vm.Step(); err != nil {
			g.status = err.Error()
			g.running = false
			return
		}
	}
	if g.vm.Halted {
		g.running = false
	}
}

func (g *Game) Update() error {
	// keys typed while the clock runs go to the input queue
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x80 && g.running {
			g.vm.Input = append(g.vm.Input, byte(r))
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.running = !g.running
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.step(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reset(nil)
	case inpututil.IsKeyJustPressed(ebiten.KeyP) && g.snapshot != "":
		if err := g.vm.SnapshotToFile(g.snapshot); err != nil {
			g.status = err.Error()
		} else {
			g.status = "saved " + g.snapshot
		}
	}

	if g.running {
		g.step(g.perFrame)
	}
	return nil
}

func (g *Game) drawLines(screen *ebiten.Image, lines []string, x, y int) {
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x), float64(y+i*lineHeight))
		text.Draw(screen, line, g.face, op)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawLines(screen, registerLines(g.vm), 8, 8)
	g.drawLines(screen, append([]string{"stack"}, stackLines(g.vm, stackRows)...), 160, 8)
	g.drawLines(screen, listingWindow(g.listing, currentLine(g.vm), listingRows), 340, 8)

	g.drawLines(screen, []string{
		"out: " + outputLine(g.vm.Output),
		g.status,
	}, 8, screenHeight-3*lineHeight)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	input := flag.String("input", "", "bytes fed to in()")
	perFrame := flag.Int("speed", 200, "ops run per frame while running")
	snapshot := flag.String("snapshot", "mycc-snapshot.zip", "file written by the p key")
	resume := flag.String("resume", "", "restore the machine from this snapshot")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: desktop [flags] <file.mc>")
	}

	src, baseDir, err := utils.ReadSource(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}
	res, err := compiler.Compile(src, compiler.Options{BaseDir: baseDir, Prune: true})
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	game := newGame(res, []byte(*input), *perFrame, *snapshot)
	if *resume != "" {
		if err := game.vm.RestoreFromFile(*resume); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("mycc - %s", flag.Arg(0)))
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
