package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/SteveSapuko/mycc/pkg/codegen"
)

// machineState is the JSON part of a snapshot. The program itself is not
// saved; Restore expects the CPU to already hold the same program.
type machineState struct {
	A      uint8                    `json:"a"`
	Regs   [codegen.NumRegs]uint8   `json:"regs"`
	Names  [codegen.NumRegs]string  `json:"names"`
	Z      bool                     `json:"z"`
	N      bool                     `json:"n"`
	C      bool                     `json:"c"`
	PC     int                      `json:"pc"`
	Steps  int                      `json:"steps"`
	Halted bool                     `json:"halted"`
	Input  []byte                   `json:"input"`
	Output []byte                   `json:"output"`
}

// Snapshot serialises the machine into an in-memory ZIP archive holding
// machine.json and memory.bin.
func (c *CPU) Snapshot() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := machineState{
		A:      c.A,
		Regs:   c.Regs,
		Z:      c.Z,
		N:      c.N,
		C:      c.C,
		PC:     c.PC,
		Steps:  c.Steps,
		Halted: c.Halted,
		Input:  c.Input,
		Output: c.Output,
	}
	for r := codegen.Reg(0); r < codegen.NumRegs; r++ {
		state.Names[r] = r.String()
	}

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal machine state: %w", err)
	}
	if err := writeZipEntry(zw, "machine.json", jsonData); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "memory.bin", c.Memory[:]); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore applies a snapshot produced by Snapshot.
func (c *CPU) Restore(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "machine.json")
	if err != nil {
		return err
	}
	var state machineState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal machine state: %w", err)
	}
	if state.PC < 0 || state.PC > len(c.Prog.Code) {
		return fmt.Errorf("snapshot pc %d outside program of %d ops", state.PC, len(c.Prog.Code))
	}

	memData, err := readZipEntry(fileMap, "memory.bin")
	if err != nil {
		return err
	}
	if len(memData) != len(c.Memory) {
		return fmt.Errorf("memory.bin holds %d bytes, want %d", len(memData), len(c.Memory))
	}

	c.A = state.A
	c.Regs = state.Regs
	c.Z = state.Z
	c.N = state.N
	c.C = state.C
	c.PC = state.PC
	c.Steps = state.Steps
	c.Halted = state.Halted
	c.Input = state.Input
	c.Output = state.Output
	copy(c.Memory[:], memData)
	return nil
}

// SnapshotToFile writes the snapshot archive to path.
func (c *CPU) SnapshotToFile(path string) error {
	data, err := c.Snapshot()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a snapshot archive from path.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.Restore(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
