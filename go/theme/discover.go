// Package theme runs the weight extraction pipeline over a folder of
// processor templates.
package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var processorFile = regexp.MustCompile(`(?i)^processor(\d+)\.schem$`)

// Source is one processor template found in a theme folder.
type Source struct {
	Processor int
	Path      string
}

// Discovery lists the templates of a theme folder.
type Discovery struct {
	// Sources are ordered by processor number.
	Sources []Source
	// Missing holds the required processor numbers with no file.
	Missing []int
	// Unexpected holds schematic files that are not processor1..limit.
	Unexpected []string
}

// Discover finds processor<N>.schem files in dir for N in [1, limit]. Names
// match case-insensitively. Processors 1..required must be present; their
// absence is reported, not an error.
func Discover(dir string, required, limit int) (*Discovery, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading theme")
	}
	found := map[int]string{}
	d := &Discovery{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".schem") {
			continue
		}
		m := processorFile.FindStringSubmatch(e.Name())
		if m == nil {
			d.Unexpected = append(d.Unexpected, e.Name())
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > limit {
			d.Unexpected = append(d.Unexpected, e.Name())
			continue
		}
		if _, ok := found[n]; ok {
			// entries are sorted, so the first spelling of a name wins
			d.Unexpected = append(d.Unexpected, e.Name())
			continue
		}
		found[n] = filepath.Join(dir, e.Name())
	}
	for n := 1; n <= limit; n++ {
		if p, ok := found[n]; ok {
			d.Sources = append(d.Sources, Source{Processor: n, Path: p})
		} else if n <= required {
			d.Missing = append(d.Missing, n)
		}
	}
	sort.Strings(d.Unexpected)
	return d, nil
}

// List returns the names of the theme folders under root, sorted.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "listing themes")
	}
	var ret []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			ret = append(ret, e.Name())
		}
	}
	sort.Strings(ret)
	return ret, nil
}

// OutputName is the document file name for a theme: <target>_<theme>.json,
// or <theme>.json without a target.
func OutputName(theme, target string) string {
	if target == "" {
		return theme + ".json"
	}
	return target + "_" + theme + ".json"
}
