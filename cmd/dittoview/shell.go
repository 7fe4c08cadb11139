package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/marmos91/dittoview/pkg/browser"
	"github.com/marmos91/dittoview/pkg/engine/headless"
	"github.com/marmos91/dittoview/pkg/tree"
)

const shellHelp = `Commands:
  ls               show the current listing
  cd <n|id>        open folder by listing number or id
  up               go to the parent folder
  search [query]   search (empty query leaves search mode)
  sort <field>     modified, opened, created, size, pages, alpha, results
  open <n|id>      open a listing entry or document id in the viewer
  page <n>         scroll the open document to page n
  zoom <factor>    set the viewer zoom (1.5 = 150%)
  close            close the viewer
  help             show this help
  quit             exit
`

// shell is the line-oriented front end of `dittoview browse`.
type shell struct {
	ctx    context.Context
	c      *browser.Controller
	engine *headless.Engine
	out    io.Writer
}

func newShell(ctx context.Context, c *browser.Controller, engine *headless.Engine, out io.Writer) *shell {
	return &shell{ctx: ctx, c: c, engine: engine, out: out}
}

// run executes commands from r until quit or EOF.
func (s *shell) run(r io.Reader) error {
	s.printView()

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := s.exec(scanner.Text()); quit {
			return nil
		}
	}
}

// exec runs one command line. It reports whether the shell should exit.
func (s *shell) exec(line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "":
	case "ls":
		s.printView()
	case "cd":
		err = s.cd(arg)
	case "up":
		if !s.c.NavigateUp(s.ctx) {
			err = errors.New("already at the top")
		} else {
			s.printView()
		}
	case "search":
		s.c.SetQuery(s.ctx, arg)
		if arg != "" {
			fmt.Fprintf(s.out, "searching for %q, type ls to see results\n", arg)
		} else {
			s.printView()
		}
	case "sort":
		err = s.sort(arg)
	case "open":
		err = s.open(arg)
	case "page":
		err = s.page(arg)
	case "zoom":
		err = s.zoom(arg)
	case "close":
		s.c.CloseViewer(s.ctx)
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit", "q":
		return true
	default:
		err = fmt.Errorf("unknown command %q, type help", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return false
}

// entries returns folders then documents, the order ls numbers them in.
func entries(v browser.View) []browser.Entry {
	all := make([]browser.Entry, 0, len(v.Folders)+len(v.Documents))
	all = append(all, v.Folders...)
	return append(all, v.Documents...)
}

// resolve maps a listing number to its entry. Anything else is an id.
func (s *shell) resolve(arg string) (browser.Entry, bool) {
	all := entries(s.c.View())
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(all) {
		return all[n-1], true
	}
	for _, e := range all {
		if e.ID == arg {
			return e, true
		}
	}
	return browser.Entry{}, false
}

func (s *shell) cd(arg string) error {
	if arg == "" {
		return errors.New("usage: cd <n|id>")
	}

	id := arg
	if e, ok := s.resolve(arg); ok {
		if e.Kind != tree.KindFolder {
			return fmt.Errorf("%s is not a folder", e.Name)
		}
		id = e.ID
	}

	if !s.c.NavigateTo(s.ctx, id) {
		return fmt.Errorf("folder %q not found", id)
	}
	s.printView()
	return nil
}

func (s *shell) sort(arg string) error {
	field, err := browser.ParseField(arg)
	if err != nil {
		return err
	}
	if err := s.c.SelectSort(s.ctx, field); err != nil {
		return err
	}
	s.printView()
	return nil
}

func (s *shell) open(arg string) error {
	if arg == "" {
		return errors.New("usage: open <n|id>")
	}

	if e, ok := s.resolve(arg); ok {
		if e.Kind == tree.KindFolder {
			return s.cd(arg)
		}
		if s.c.OpenEntry(s.ctx, e) == 0 {
			return fmt.Errorf("could not open %s", e.Name)
		}
	} else if !s.c.OpenDocument(s.ctx, arg) {
		return fmt.Errorf("document %q not found", arg)
	}

	s.engine.Sync()
	s.printSession()
	return nil
}

func (s *shell) session() (*browser.SessionView, error) {
	sv := s.c.View().Session
	if sv == nil {
		return nil, errors.New("no document open")
	}
	return sv, nil
}

func (s *shell) page(arg string) error {
	sv, err := s.session()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return errors.New("usage: page <n>")
	}

	s.engine.ScrollToPage(sv.ID, n)
	s.engine.Sync()
	s.printSession()
	return nil
}

func (s *shell) zoom(arg string) error {
	sv, err := s.session()
	if err != nil {
		return err
	}
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil || f <= 0 {
		return errors.New("usage: zoom <factor>")
	}

	s.engine.RequestZoom(sv.ID, f)
	s.engine.Sync()
	return nil
}

func (s *shell) printView() {
	v := s.c.View()

	names := make([]string, 0, len(v.Breadcrumb))
	for _, p := range v.Breadcrumb {
		names = append(names, p.Name)
	}
	fmt.Fprintf(s.out, "\n%s\n", strings.Join(names, " / "))

	dir := "asc"
	if v.Sort.Descending {
		dir = "desc"
	}
	if v.SearchMode {
		fmt.Fprintf(s.out, "search: %q  sort: %s %s\n", v.Query, v.Sort.Field, dir)
	} else {
		fmt.Fprintf(s.out, "sort: %s %s\n", v.Sort.Field, dir)
	}

	all := entries(v)
	if len(all) == 0 {
		fmt.Fprintln(s.out, "  (empty)")
	}
	for i, e := range all {
		marker := " "
		if e.Kind == tree.KindFolder {
			marker = "/"
		}
		line := fmt.Sprintf("%3d %s %-40s %s", i+1, marker, e.Name, e.Subtitle)
		if e.Badge != "" {
			line += " [" + e.Badge + "]"
		}
		fmt.Fprintln(s.out, strings.TrimRight(line, " "))
	}

	s.printSession()
}

func (s *shell) printSession() {
	sv := s.c.View().Session
	if sv == nil {
		return
	}
	fmt.Fprintf(s.out, "viewer: %s page %d", sv.ItemID, sv.Page)
	if sv.SearchTerm != "" {
		fmt.Fprintf(s.out, " (search %q)", sv.SearchTerm)
	}
	fmt.Fprintln(s.out)
}
