package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/SteveSapuko/mycc/pkg/casebook"
	"github.com/SteveSapuko/mycc/pkg/compiler"
	"github.com/SteveSapuko/mycc/pkg/config"
	"github.com/SteveSapuko/mycc/pkg/cpu"
	"github.com/SteveSapuko/mycc/pkg/utils"
)

// project is the configuration a command runs with: mycc.yaml overridden
// by the command line.
type project struct {
	conf    config.Config
	dir     string
	entry   string // path of the source file
	src     string
	baseDir string
}

func loadProject(c *cli.Context) (*project, error) {
	p := &project{dir: c.String("dir")}
	if p.dir == "" {
		p.dir = "."
	}

	conf, err := config.Load(p.dir)
	if err != nil {
		return nil, cli.Exit(color.RedString("Error reading %s: %s", config.FileName, err), 1)
	}
	if c.Bool("no-prune") {
		conf.Prune = false
	}
	if n := c.Int("max-steps"); n > 0 {
		conf.MaxSteps = n
	}
	if c.IsSet("input") {
		conf.Input = c.String("input")
	}
	p.conf = conf

	p.entry = c.Args().First()
	if p.entry == "" {
		p.entry = utils.ProjectPath(p.dir, conf.Entry)
	}
	p.src, p.baseDir, err = utils.ReadSource(p.entry)
	if err != nil {
		return nil, cli.Exit(color.RedString("Error: %s", err), 1)
	}
	return p, nil
}

func (p *project) options() compiler.Options {
	return compiler.Options{
		BaseDir:  p.baseDir,
		Prune:    p.conf.Prune,
		MaxSteps: p.conf.MaxSteps,
	}
}

// listingPath picks where build writes: the -o flag, the listing next to a
// file named on the command line, or the project's listing setting.
func (p *project) listingPath(c *cli.Context) string {
	if out := c.String("output"); out != "" {
		return out
	}
	if c.Args().Present() {
		return defaultOutputPath(p.entry)
	}
	return utils.ProjectPath(p.dir, p.conf.Listing)
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".asm"
	}
	return strings.TrimSuffix(inPath, ext) + ".asm"
}

func compileError(err error) error {
	return cli.Exit(color.RedString("Error compiling: %s", err), 1)
}

func build(c *cli.Context) error {
	p, err := loadProject(c)
	if err != nil {
		return err
	}
	res, err := compiler.Compile(p.src, p.options())
	if err != nil {
		return compileError(err)
	}

	out := p.listingPath(c)
	if err := os.WriteFile(out, []byte(res.Listing), 0644); err != nil {
		return cli.Exit(color.RedString("Error writing listing: %s", err), 1)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("compiled %d ops -> %s", len(res.Linked.Code), out))
	return nil
}

func run(c *cli.Context) error {
	p, err := loadProject(c)
	if err != nil {
		return err
	}
	res, err := compiler.Compile(p.src, p.options())
	if err != nil {
		return compileError(err)
	}
	if c.Bool("show-asm") {
		fmt.Fprintln(c.App.Writer, res.Listing)
	}

	m := cpu.New(res.Linked)
	if resume := c.String("resume"); resume != "" {
		if err := m.RestoreFromFile(resume); err != nil {
			return cli.Exit(color.RedString("Error restoring %s: %s", resume, err), 1)
		}
	} else {
		m.Input = []byte(p.conf.Input)
	}

	limit := p.conf.MaxSteps
	if limit == 0 {
		limit = compiler.DefaultMaxSteps
	}
	runErr := m.Run(limit)

	if path := c.String("snapshot"); path != "" {
		if err := m.SnapshotToFile(path); err != nil {
			return cli.Exit(color.RedString("Error saving snapshot: %s", err), 1)
		}
	}

	if len(m.Output) > 0 {
		c.App.Writer.Write(m.Output)
		fmt.Fprintln(c.App.Writer)
	}
	switch {
	case errors.Is(runErr, cpu.ErrStepLimit):
		fmt.Fprintln(c.App.Writer, color.YellowString("stopped after %d steps without halting", m.Steps))
	case runErr != nil:
		return cli.Exit(color.RedString("Error running: %s", runErr), 1)
	default:
		fmt.Fprintln(c.App.Writer, color.GreenString("halted after %d steps", m.Steps))
	}
	if res.Main() != nil && m.Halted {
		fmt.Fprintf(c.App.Writer, "main returned % x\n", res.MainResult(m))
	}
	return nil
}

func check(c *cli.Context) error {
	p, err := loadProject(c)
	if err != nil {
		return err
	}
	res, err := compiler.Analyze(p.src, p.options())
	if err != nil {
		return compileError(err)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("%s: %d statements ok", p.entry, len(res.Program.Stmts)))
	return nil
}

func tokens(c *cli.Context) error {
	p, err := loadProject(c)
	if err != nil {
		return err
	}
	res, err := compiler.Analyze(p.src, p.options())
	if res.Tokens == nil {
		return compileError(err)
	}
	for _, tok := range res.Tokens {
		fmt.Fprintf(c.App.Writer, "%d:%d\t%s\t%s\n", tok.Line, tok.Col, tok.Kind, tok.Text)
	}
	return nil
}

func printAST(c *cli.Context) error {
	p, err := loadProject(c)
	if err != nil {
		return err
	}
	res, err := compiler.Analyze(p.src, p.options())
	if c.Bool("typed") {
		if err != nil {
			return compileError(err)
		}
		fmt.Fprint(c.App.Writer, res.Program)
		return nil
	}
	if res.AST == nil && err != nil {
		return compileError(err)
	}
	for _, s := range res.AST {
		fmt.Fprintln(c.App.Writer, s)
	}
	return nil
}

func cases(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.Exit(color.RedString("Error: No case book specified"), 1)
	}

	passed, failed := 0, 0
	for _, path := range c.Args().Slice() {
		md, baseDir, err := utils.ReadSource(path)
		if err != nil {
			return cli.Exit(color.RedString("Error: %s", err), 1)
		}
		book, err := casebook.Extract(md)
		if err != nil {
			return cli.Exit(color.RedString("Error reading %s: %s", path, err), 1)
		}

		opts := compiler.Options{BaseDir: baseDir, Prune: true}
		for _, tc := range book {
			if err := casebook.Check(tc, opts); err != nil {
				failed++
				fmt.Fprintln(c.App.Writer, color.RedString("FAIL %s:%d %s: %s", path, tc.Line, tc.Name, err))
				continue
			}
			passed++
			if c.Bool("verbose") {
				fmt.Fprintln(c.App.Writer, color.GreenString("ok   %s:%d %s", path, tc.Line, tc.Name))
			}
		}
	}

	if failed > 0 {
		return cli.Exit(color.RedString("%d of %d cases failed", failed, passed+failed), 1)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("%d cases passed", passed))
	return nil
}

func initProject(c *cli.Context) error {
	dir := c.String("dir")
	err := config.Default().Save(dir, c.Bool("force"))
	if errors.Is(err, os.ErrExist) {
		return cli.Exit(color.YellowString("%s already exists, use --force to overwrite", config.FileName), 1)
	}
	if err != nil {
		return cli.Exit(color.RedString("Error writing %s: %s", config.FileName, err), 1)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("wrote %s", filepath.Join(dir, config.FileName)))
	return nil
}
