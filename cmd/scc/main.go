package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/cli"
	"github.com/xplshn/scc/pkg/codegen"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/lexer"
	"github.com/xplshn/scc/pkg/parser"
	"github.com/xplshn/scc/pkg/util"
)

func main() {
	app := cli.NewApp("scc")
	app.Synopsis = "[options] [input.c]"
	app.Description = "A compiler for Simple C. Reads one translation unit and writes 32-bit x86 assembly in AT&T syntax."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/scc>"
	app.Since = 2025

	var (
		outFile    string
		target     string
		targetFile string
		dumpTree   bool
		verbose    int
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file> instead of stdout.", "file")
	fs.String(&target, "target", "t", "", "Select a built-in target: "+strings.Join(config.TargetNames(), ", ")+".", "name")
	fs.String(&targetFile, "target-file", "", "", "Load a YAML target description over the selected target.", "file")
	fs.Bool(&dumpTree, "dump-tree", "", false, "Dump each checked procedure tree to stderr.")
	fs.Int(&verbose, "verbose", "v", 0, "Log compiler phases at the given verbosity.", "level")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		util.InitLogging(verbose)
		defer glog.Flush()

		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		if err := cfg.SetTarget(runtime.GOOS, target); err != nil {
			return fail(err)
		}
		if targetFile != "" {
			if err := cfg.LoadTargetFile(targetFile); err != nil {
				return fail(err)
			}
		}

		return compile(cfg, inputFiles, outFile, dumpTree)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func fail(err error) error {
	fmt.Fprintf(os.Stderr, "scc: error: %v\n", err)
	return err
}

func compile(cfg *config.Config, inputFiles []string, outFile string, dumpTree bool) error {
	if len(inputFiles) > 1 {
		return fail(errors.Errorf("expected at most one input file, got %d", len(inputFiles)))
	}
	path := "-"
	if len(inputFiles) == 1 {
		path = inputFiles[0]
	}

	glog.V(1).Infof("reading %s", path)
	source, err := readSource(path)
	if err != nil {
		return fail(err)
	}

	diag := util.NewReporter(os.Stderr, cfg)
	diag.SetSourceFiles([]util.SourceFileRecord{{Name: path, Content: source}})

	glog.V(1).Infof("parsing and checking %s", path)
	p := parser.NewParser(lexer.NewLexer(source, 0, diag), diag, cfg)
	unit, err := p.Parse()
	if err != nil {
		return err
	}

	if dumpTree {
		for _, proc := range unit.Procedures {
			ast.Dump(os.Stderr, proc)
		}
	}

	if diag.Count() > 0 {
		glog.V(1).Infof("%d error(s), skipping code generation", diag.Count())
		return diag.Err()
	}

	glog.V(1).Infof("generating code for target %s", cfg.Target.Name)
	asm, err := codegen.NewGASBackend().Generate(unit, cfg)
	if err != nil {
		return fail(err)
	}

	glog.V(1).Infof("writing output")
	if err := writeOutput(outFile, asm.Bytes()); err != nil {
		return fail(err)
	}
	return nil
}

func readSource(path string) ([]rune, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read '%s'", path)
	}
	return []rune(string(content)), nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return errors.Wrap(err, "could not write output")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "could not write '%s'", path)
}
