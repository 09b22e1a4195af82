package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/zephyrtronium/picasso"
)

const (
	historyFile = ".picasso_history"
	prompt      = "picasso> "
)

var (
	valColor = color.New(color.FgCyan)
	cmdColor = color.New(color.FgYellow)
)

// session is an interactive session. Bindings made by one line are visible to
// the lines after it.
type session struct {
	ctx   *picasso.Context
	popts []picasso.ParseOption
	w, h  int
	out   io.Writer
	errs  io.Writer

	// last is the most recent expression that parsed.
	last    *picasso.Expr
	lastSrc string
}

func (s *session) run() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				errColor.Fprintln(s.errs, err)
				return 1
			}
			fmt.Fprintln(s.out)
			return 0
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if s.line(line) {
			return 0
		}
	}
}

// line handles one line of input. It returns true if the session should end.
func (s *session) line(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, ":") {
		s.eval(text)
		return false
	}
	cmd, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)
	switch cmd {
	case ":quit", ":q":
		return true
	case ":vars":
		s.vars()
	case ":at":
		s.at(args)
	case ":render":
		s.render(args)
	default:
		cmdColor.Fprintln(s.errs, "commands: :at x y, :render file, :vars, :quit")
	}
	return false
}

// eval parses an expression, evaluates it at the origin, and makes it the
// subject of later :at and :render commands.
func (s *session) eval(src string) {
	e, err := picasso.Parse(src, s.popts...)
	if err != nil {
		report(s.errs, src, err)
		return
	}
	s.last, s.lastSrc = e, src
	s.show(0, 0)
}

func (s *session) show(x, y float64) {
	c := s.ctx.Eval(s.last, x, y)
	if err := s.ctx.Err(); err != nil {
		report(s.errs, s.lastSrc, err)
		return
	}
	valColor.Fprintln(s.out, c)
}

func (s *session) at(args string) {
	if s.last == nil {
		errColor.Fprintln(s.errs, "no expression")
		return
	}
	f := strings.Fields(strings.ReplaceAll(args, ",", " "))
	if len(f) != 2 {
		errColor.Fprintln(s.errs, "usage: :at x y")
		return
	}
	x, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		errColor.Fprintln(s.errs, "invalid x:", f[0])
		return
	}
	y, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		errColor.Fprintln(s.errs, "invalid y:", f[1])
		return
	}
	s.show(x, y)
}

func (s *session) render(name string) {
	if s.last == nil {
		errColor.Fprintln(s.errs, "no expression")
		return
	}
	if name == "" {
		errColor.Fprintln(s.errs, "usage: :render file")
		return
	}
	if err := renderFile(context.Background(), s.last, s.ctx, s.w, s.h, name); err != nil {
		errColor.Fprintln(s.errs, err)
		return
	}
	fmt.Fprintf(s.out, "wrote %dx%d image to %s\n", s.w, s.h, name)
}

func (s *session) vars() {
	var names []string
	s.ctx.Range(func(name string, _ picasso.Color) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	for _, name := range names {
		v, _ := s.ctx.Lookup(name)
		fmt.Fprintf(s.out, "%s = %s\n", name, valColor.Sprint(v))
	}
}
