package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/driver"
	"sumcore/interpreter-go/pkg/interpreter"
	"sumcore/interpreter-go/pkg/typechecker"
)

const cliToolVersion = "sumcore-cli 0.3.0"

// Exit codes.
const (
	exitOK      = 0
	exitLoad    = 1
	exitRuntime = 2
)

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(ctx, os.Args[1:]))
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		c.printUsage()
		return exitLoad
	}
	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintf(c.stdout, "%s (core %s)\n", cliToolVersion, driver.CoreVersion)
		return exitOK
	case "run":
		return c.runCommand(ctx, args[1:])
	case "check":
		return c.checkCommand(args[1:])
	case "dump":
		return c.dumpCommand(args[1:])
	case "repl":
		return c.replCommand(ctx, args[1:])
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n", args[0])
		c.printUsage()
		return exitLoad
	}
}

type runOptions struct {
	trace string
	entry string
}

func (c *cli) runCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	watch := fs.Bool("watch", false, "re-run the program whenever one of its files changes")
	trace := fs.String("trace", "", "trace level: error, info or debug")
	entry := fs.String("entry", "", "name of the IO -> IO function to run")
	if err := fs.Parse(args); err != nil {
		return exitLoad
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: sumcore run [--watch] [--trace level] [--entry name] <program.yml|dir>")
		return exitLoad
	}
	opts := runOptions{trace: *trace, entry: *entry}
	if *watch {
		return c.watch(ctx, fs.Arg(0), opts)
	}
	return c.execute(ctx, fs.Arg(0), opts)
}

// load decodes the program at path and loads it into a fresh interpreter
// writing to the CLI's stdout.
func (c *cli) load(path, trace string) (*interpreter.Interpreter, *driver.Program, error) {
	prog, err := driver.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := configureTracing(trace, prog.Manifest); err != nil {
		return nil, nil, err
	}
	interp := interpreter.New(interpreter.WithOutput(c.stdout))
	if err := interp.LoadProgram(prog); err != nil {
		return nil, prog, err
	}
	return interp, prog, nil
}

func (c *cli) execute(ctx context.Context, path string, opts runOptions) int {
	interp, _, err := c.load(path, opts.trace)
	if err != nil {
		c.reportLoadError(err)
		return exitLoad
	}
	interp.SetEntry(opts.entry)
	if _, err := interp.EvalMainContext(ctx); err != nil {
		if reason, ok := interpreter.AbortReason(err); ok {
			fmt.Fprintf(c.stderr, "aborted: %s\n", reason)
		} else {
			fmt.Fprintf(c.stderr, "runtime error: %v\n", err)
		}
		return exitRuntime
	}
	return exitOK
}

func (c *cli) reportLoadError(err error) {
	var checkErr *typechecker.CheckError
	if errors.As(err, &checkErr) {
		for _, diag := range checkErr.Diagnostics {
			fmt.Fprintln(c.stderr, diag.Message)
		}
		return
	}
	fmt.Fprintf(c.stderr, "failed to load program: %v\n", err)
}

func (c *cli) checkCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "usage: sumcore check <program.yml|dir>")
		return exitLoad
	}
	interp, prog, err := c.load(args[0], "")
	if err != nil {
		c.reportLoadError(err)
		return exitLoad
	}
	values := 0
	for _, m := range prog.Modules {
		values += len(m.Values)
	}
	fmt.Fprintf(c.stdout, "ok: %d type(s), %d value(s) in %d file(s)\n",
		len(interp.Registry().Types()), values, len(prog.Files))
	return exitOK
}

func (c *cli) dumpCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "usage: sumcore dump <program.yml|dir>")
		return exitLoad
	}
	prog, err := driver.Load(args[0])
	if err != nil {
		c.reportLoadError(err)
		return exitLoad
	}
	for _, m := range prog.Modules {
		fmt.Fprint(c.stdout, ast.Tree(m))
	}
	return exitOK
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, `usage: sumcore <command> [arguments]

commands:
  run [--watch] [--trace level] [--entry name] <program>
                 load, check and run the entry function
  check <program>  load and check without running
  dump <program>   print the decoded syntax tree
  repl [program]   evaluate expressions against a loaded program
  version          print the version

<program> is a program file or a directory holding sumcore.yml.`)
}
