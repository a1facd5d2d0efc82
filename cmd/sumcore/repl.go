package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/driver"
	"sumcore/interpreter-go/pkg/interpreter"
	"sumcore/interpreter-go/pkg/runtime"
)

const (
	replPrompt  = "sumcore> "
	historyFile = ".sumcore_history"
)

func (c *cli) replCommand(ctx context.Context, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(c.stderr, "usage: sumcore repl [program.yml|dir]")
		return exitLoad
	}
	interp := interpreter.New(interpreter.WithOutput(c.stdout))
	if len(args) == 1 {
		var err error
		if interp, _, err = c.load(args[0], ""); err != nil {
			c.reportLoadError(err)
			return exitLoad
		}
	}
	session := &replSession{interp: interp, out: c.stdout}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(c.stdout)
				break
			}
			fmt.Fprintf(c.stderr, "repl: %v\n", err)
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if session.handle(ctx, line) {
			break
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return exitOK
}

// replSession evaluates REPL lines against a loaded interpreter. Lines
// starting with ':' are commands; anything else is a YAML flow expression.
type replSession struct {
	interp *interpreter.Interpreter
	out    io.Writer
}

func (s *replSession) handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		return s.command(ctx, strings.Fields(line))
	}
	expr, err := driver.ParseExpression(line)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return false
	}
	val, err := s.interp.EvalExpression(expr)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return false
	}
	fmt.Fprintln(s.out, runtime.Describe(val))
	return false
}

func (s *replSession) command(ctx context.Context, fields []string) bool {
	switch fields[0] {
	case ":q", ":quit":
		return true
	case ":types":
		reg := s.interp.Registry()
		for _, name := range reg.Types() {
			kind, _ := reg.Kind(name)
			variants := reg.Variants(name)
			parts := make([]string, 0, len(variants))
			for _, v := range variants {
				part := fmt.Sprintf("%s#%d", v.Name, v.Tag)
				if len(v.Fields) > 0 {
					types := make([]string, 0, len(v.Fields))
					for _, f := range v.Fields {
						types = append(types, ast.TypeString(f))
					}
					part += "(" + strings.Join(types, ", ") + ")"
				}
				parts = append(parts, part)
			}
			fmt.Fprintf(s.out, "%s %s = %s\n", kind, name, strings.Join(parts, " | "))
		}
	case ":globals":
		for _, name := range s.interp.GlobalEnvironment().Keys() {
			val, _ := s.interp.GlobalEnvironment().Lookup(name)
			fmt.Fprintf(s.out, "%s = %s\n", name, runtime.Describe(val))
		}
	case ":run":
		if len(fields) > 1 {
			s.interp.SetEntry(fields[1])
		}
		if _, err := s.interp.EvalMainContext(ctx); err != nil {
			fmt.Fprintln(s.out, err)
		}
	case ":help":
		fmt.Fprintln(s.out, ":types  :globals  :run [entry]  :quit")
	default:
		fmt.Fprintf(s.out, "unknown command %s\n", fields[0])
	}
	return false
}
