package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"C"},
		Value:   ".",
		Usage:   "Project directory holding mycc.yaml",
	}
	noPruneFlag := &cli.BoolFlag{
		Name:  "no-prune",
		Usage: "Keep functions the entry code never calls",
	}

	return &cli.App{
		Name:                   "mycc",
		Usage:                  "Compile mycc programs for the 8-bit accumulator machine",
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Compile a file and write its assembly listing",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					dirFlag,
					noPruneFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the listing",
					},
				},
				Action: build,
			},
			{
				Name:      "run",
				Usage:     "Compile a file and run it on the simulator",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					dirFlag,
					noPruneFlag,
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Bytes fed to in()",
					},
					&cli.IntFlag{
						Name:  "max-steps",
						Usage: "Stop after this many steps, 0 for the project setting",
					},
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"s"},
						Usage:   "Save the machine state to this file when the run stops",
					},
					&cli.StringFlag{
						Name:  "resume",
						Usage: "Restore the machine state from this file before running",
					},
					&cli.BoolFlag{
						Name:  "show-asm",
						Usage: "Print the listing before running",
					},
				},
				Action: run,
			},
			{
				Name:      "check",
				Usage:     "Type check a file without generating code",
				ArgsUsage: "[file]",
				Flags:     []cli.Flag{dirFlag},
				Action:    check,
			},
			{
				Name:      "tokens",
				Usage:     "Print the tokens of a file",
				ArgsUsage: "[file]",
				Flags:     []cli.Flag{dirFlag},
				Action:    tokens,
			},
			{
				Name:      "ast",
				Usage:     "Print the syntax tree of a file",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{
						Name:    "typed",
						Aliases: []string{"t"},
						Usage:   "Print the tree after type checking",
					},
				},
				Action: printAST,
			},
			{
				Name:      "cases",
				Usage:     "Run the test cases of Markdown case books",
				ArgsUsage: "<file.md>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Report passing cases too",
					},
				},
				Action: cases,
			},
			{
				Name:  "init",
				Usage: "Write a default mycc.yaml",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing mycc.yaml",
					},
				},
				Action: initProject,
			},
		},
	}
}
