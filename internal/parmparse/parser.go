package parmparse

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/nicholasbl/amrex/internal/errors"
)

// IncludeName is the definition name that includes another input file.
const IncludeName = "FILE"

// CommandLine is the source recorded for command-line definitions.
const CommandLine = "command line"

// definition is one "name = values" statement or flag.
type definition struct {
	name   string
	values []string
	file   string
	line   int
}

// parser accumulates definitions in source order.
type parser struct {
	includes []string
	defs     []definition
}

// parseFile reads path and everything it includes.
func (p *parser) parseFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewConfigError("cannot resolve input file", err).WithFile(path)
	}
	if slices.Contains(p.includes, abs) {
		return errors.NewConfigError(
			fmt.Sprintf("included from %s", strings.Join(p.includes, " -> ")),
			errors.ErrIncludeCycle,
		).WithFile(path)
	}

	if isStructured(path) {
		defs, err := readStructured(path)
		if err != nil {
			return err
		}
		p.defs = append(p.defs, defs...)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError("cannot read input file", err).WithFile(path)
	}
	tokens, err := lex(string(data), path)
	if err != nil {
		return err
	}

	p.includes = append(p.includes, abs)
	defer func() { p.includes = p.includes[:len(p.includes)-1] }()

	return p.parseTokens(tokens, path, filepath.Dir(path))
}

// parseArgs reads command-line arguments. Each argument is lexed on its
// own; its position stands in for the line number.
func (p *parser) parseArgs(args []string) error {
	var tokens []token
	for i, arg := range args {
		toks, err := lex(arg, CommandLine)
		if err != nil {
			return err
		}
		for _, tok := range toks {
			tok.line = i + 1
			tokens = append(tokens, tok)
		}
	}
	return p.parseTokens(tokens, CommandLine, ".")
}

func (p *parser) parseTokens(tokens []token, file, dir string) error {
	for i := 0; i < len(tokens); {
		tok := tokens[i]

		switch {
		case tok.isAssign():
			return syntaxError("definition without a name", file, tok.line)

		case i+1 < len(tokens) && tokens[i+1].isAssign():
			if tok.quoted {
				return syntaxError(fmt.Sprintf("quoted name %q", tok.text), file, tok.line)
			}
			j := i + 2
			var values []string
			for j < len(tokens) && !startsStatement(tokens, j) {
				values = append(values, tokens[j].text)
				j++
			}
			if len(values) == 0 {
				return syntaxError(fmt.Sprintf("no values for %q", tok.text), file, tok.line)
			}

			if tok.text == IncludeName {
				for _, inc := range values {
					if !filepath.IsAbs(inc) {
						inc = filepath.Join(dir, inc)
					}
					if err := p.parseFile(inc); err != nil {
						return err
					}
				}
			} else {
				p.defs = append(p.defs, definition{
					name:   tok.text,
					values: values,
					file:   file,
					line:   tok.line,
				})
			}
			i = j

		case isFlag(tok):
			p.defs = append(p.defs, definition{
				name: strings.TrimLeft(tok.text, "-"),
				file: file,
				line: tok.line,
			})
			i++

		default:
			return syntaxError(fmt.Sprintf("unexpected %q", tok.text), file, tok.line)
		}
	}
	return nil
}

// startsStatement reports whether tokens[j] ends the current value list.
func startsStatement(tokens []token, j int) bool {
	if tokens[j].isAssign() {
		return true
	}
	if j+1 < len(tokens) && tokens[j+1].isAssign() {
		return true
	}
	return isFlag(tokens[j])
}

// isFlag reports whether tok is a "-name" option rather than a value.
// Anything that parses as a number is a value.
func isFlag(tok token) bool {
	if tok.quoted || !strings.HasPrefix(tok.text, "-") {
		return false
	}
	if strings.TrimLeft(tok.text, "-") == "" {
		return false
	}
	_, err := cast.ToFloat64E(tok.text)
	return err != nil
}

func syntaxError(msg, file string, line int) error {
	return errors.NewConfigError(msg, errors.ErrSyntax).WithFile(file).WithLine(line)
}
