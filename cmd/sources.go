package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/rubiojr/py2scala/config"
	"github.com/rubiojr/py2scala/convert"
)

// stdinArg names standard input on the command line.
const stdinArg = "-"

// matcher selects files below a directory argument. Patterns see slash
// separated paths relative to that directory.
type matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

func newMatcher(src config.Sources) (*matcher, error) {
	m := &matcher{}
	for _, p := range src.Include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", p, err)
		}
		m.include = append(m.include, g)
	}
	for _, p := range src.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

func (m *matcher) excluded(rel string) bool {
	for _, g := range m.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (m *matcher) selected(rel string) bool {
	if m.excluded(rel) {
		return false
	}
	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// collectSources expands the command-line arguments into input files in
// order. Files are taken as given; directories are walked in lexical order and
// filtered by the configured patterns. No arguments means standard input.
func collectSources(args []string, src config.Sources) ([]string, error) {
	if len(args) == 0 {
		return []string{stdinArg}, nil
	}
	m, err := newMatcher(src)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, arg := range args {
		if arg == stdinArg {
			files = append(files, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := walkSources(arg, m)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no Python sources found in %s", arg)
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkSources(root string, m *matcher) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && m.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.selected(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", root, err)
	}
	return files, nil
}

// readSources reads every file into one line sequence.
func readSources(files []string, stdin io.Reader) ([]string, error) {
	var lines []string
	for _, name := range files {
		l, err := readSource(name, stdin)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l...)
	}
	return lines, nil
}

func readSource(name string, stdin io.Reader) ([]string, error) {
	if name == stdinArg {
		return convert.ReadLines(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := convert.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lines, nil
}
