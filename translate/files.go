package translate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrAmbiguousSelection is matched by every AmbiguousSelectionError.
var ErrAmbiguousSelection = errors.New("ambiguous file selection")

// AmbiguousSelectionError reports a role with zero or several candidate
// files.
type AmbiguousSelectionError struct {
	Role       string
	Candidates []string
}

func (e *AmbiguousSelectionError) Error() string {
	if len(e.Candidates) == 0 {
		return "no " + e.Role + " file found"
	}
	return "multiple " + e.Role + " files selected, too confusing: " + strings.Join(e.Candidates, ", ")
}

func (e *AmbiguousSelectionError) Is(target error) bool { return target == ErrAmbiguousSelection }

const (
	Top    = "top"
	Bottom = "bot"
)

// Selection names the file for every pass of a board.
type Selection struct {
	// Layer is the side the drill file was made for.
	Layer      string
	OtherLayer string

	Drill      string
	NearTraces string
	FarTraces  string
	Mill       string
}

// Discover finds the board files in dir by the pcb-gcode naming
// convention: <prefix>*drill.g, <prefix>*etch.g and <prefix>*mill.g.
//
// Traces are selected by the layer named in the drill file; the mill
// file is the one for the opposite layer.
func Discover(dir, prefix string) (*Selection, error) {
	glob := func(suffix string) ([]string, error) {
		m, err := filepath.Glob(filepath.Join(dir, prefix+"*"+suffix))
		return m, errors.Wrap(err, "glob")
	}
	drills, err := glob("drill.g")
	if err != nil {
		return nil, err
	}
	routes, err := glob("etch.g")
	if err != nil {
		return nil, err
	}
	mills, err := glob("mill.g")
	if err != nil {
		return nil, err
	}

	sel := &Selection{}
	sel.Drill, err = one("drill", drills)
	if err != nil {
		return nil, err
	}
	sel.Layer = layerOf(sel.Drill, "drill.g")
	switch sel.Layer {
	case Top:
		sel.OtherLayer = Bottom
	case Bottom:
		sel.OtherLayer = Top
	default:
		return nil, &AmbiguousSelectionError{Role: "layer (top/bot) of drill"}
	}

	sel.NearTraces, err = one(sel.Layer+" etch", withLayer(routes, "etch.g", sel.Layer))
	if err != nil {
		return nil, err
	}
	sel.FarTraces, err = one(sel.OtherLayer+" etch", withLayer(routes, "etch.g", sel.OtherLayer))
	if err != nil {
		return nil, err
	}
	sel.Mill, err = one(sel.OtherLayer+" mill", withLayer(mills, "mill.g", sel.OtherLayer))
	if err != nil {
		return nil, err
	}

	return sel, nil
}

func one(role string, candidates []string) (string, error) {
	if len(candidates) != 1 {
		return "", &AmbiguousSelectionError{Role: role, Candidates: candidates}
	}
	return candidates[0], nil
}

// layerOf returns the three characters before the role suffix, e.g.
// "top" for "board.top.drill.g".
func layerOf(path, suffix string) string {
	name := strings.TrimSuffix(filepath.Base(path), suffix)
	name = strings.TrimRight(name, "._-")
	if len(name) < 3 {
		return ""
	}
	return name[len(name)-3:]
}

func withLayer(paths []string, suffix, layer string) []string {
	var res []string
	for _, p := range paths {
		if layerOf(p, suffix) == layer {
			res = append(res, p)
		}
	}
	return res
}

// Open opens the selected files in pass order. The returned func closes
// them.
func (sel *Selection) Open() (Sources, func() error, error) {
	var files []*os.File
	closeAll := func() error {
		var first error
		for _, f := range files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	open := func(name string) (Source, error) {
		f, err := os.Open(name)
		if err != nil {
			return Source{}, err
		}
		files = append(files, f)
		return Source{Name: name, Reader: f}, nil
	}

	var src Sources
	var err error
	for _, s := range []struct {
		dst  *Source
		name string
	}{
		{&src.Drill, sel.Drill},
		{&src.NearTraces, sel.NearTraces},
		{&src.FarTraces, sel.FarTraces},
		{&src.Mill, sel.Mill},
	} {
		*s.dst, err = open(s.name)
		if err != nil {
			closeAll()
			return Sources{}, nil, err
		}
	}

	return src, closeAll, nil
}
