package cpu

import (
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"github.com/SteveSapuko/mycc/pkg/codegen"
)

const counter = `
    imr r0, 1
    ima 3
top:
    out
    sub r0
    bnz top
    hlt
`

func TestSnapshotRoundTrip(t *testing.T) {
	c1 := load(t, counter)
	c1.Input = []byte{1, 2}
	c1.Memory[0x0042] = 0xAB
	c1.Memory[0xFFFF] = 0xCD
	for i := 0; i < 5; i++ {
		be.Err(t, c1.Step(), nil)
	}

	data, err := c1.Snapshot()
	be.Err(t, err, nil)

	c2 := load(t, counter)
	be.Err(t, c2.Restore(data), nil)

	be.Equal(t, c2.A, c1.A)
	be.Equal(t, c2.Regs, c1.Regs)
	be.Equal(t, c2.Z, c1.Z)
	be.Equal(t, c2.N, c1.N)
	be.Equal(t, c2.C, c1.C)
	be.Equal(t, c2.PC, c1.PC)
	be.Equal(t, c2.Steps, c1.Steps)
	be.Equal(t, c2.Output, c1.Output)
	be.Equal(t, c2.Input, c1.Input)
	be.Equal(t, c2.Read(0x0042), byte(0xAB))
	be.Equal(t, c2.Read(0xFFFF), byte(0xCD))
}

func TestSnapshotResumes(t *testing.T) {
	c1 := load(t, counter)
	for i := 0; i < 4; i++ {
		be.Err(t, c1.Step(), nil)
	}
	data, err := c1.Snapshot()
	be.Err(t, err, nil)

	c2 := load(t, counter)
	be.Err(t, c2.Restore(data), nil)
	be.Err(t, c2.Run(100), nil)
	be.Equal(t, c2.Output, []byte{3, 2, 1})
	be.Equal(t, c2.Regs[codegen.R0], uint8(1))
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.zip")
	c1 := run(t, counter)
	be.Err(t, c1.SnapshotToFile(path), nil)

	c2 := load(t, counter)
	be.Err(t, c2.RestoreFromFile(path), nil)
	be.True(t, c2.Halted)
	be.Equal(t, c2.Output, c1.Output)
}

func TestRestoreRejects(t *testing.T) {
	c := load(t, counter)
	be.Err(t, c.Restore([]byte("not a zip")))

	big := load(t, counter+"\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\n")
	big.PC = len(big.Prog.Code)
	data, err := big.Snapshot()
	be.Err(t, err, nil)
	be.Err(t, c.Restore(data), "outside program")
}
