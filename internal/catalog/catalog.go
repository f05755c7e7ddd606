package catalog

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Catalog maps a Unity version identifier to the base URL its installers are
// downloaded from.
type Catalog map[string]string

// Merge combines catalogs in argument order, later catalogs win on duplicate
// versions. None of the inputs are modified.
func Merge(catalogs ...Catalog) Catalog {
	size := 0
	for _, c := range catalogs {
		size += len(c)
	}
	out := make(Catalog, size)
	for _, c := range catalogs {
		for version, url := range c {
			out[version] = url
		}
	}
	return out
}

// Versions returns the catalog's versions sorted newest first. Keys that do
// not parse as versions are placed last in lexical order.
func (c Catalog) Versions() []string {
	out := make([]string, 0, len(c))
	for version := range c {
		out = append(out, version)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := ParseVersion(out[i])
		b, errB := ParseVersion(out[j])
		switch {
		case errA != nil && errB != nil:
			return out[i] < out[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return Compare(a, b) > 0
	})
	return out
}

func (c Catalog) Filter(level Level) Catalog {
	out := Catalog{}
	for version, url := range c {
		v, err := ParseVersion(version)
		if err != nil {
			continue
		}
		if level.Includes(v) {
			out[version] = url
		}
	}
	return out
}

// Latest returns the newest version of the given level, false if there is none.
func (c Catalog) Latest(level Level) (string, bool) {
	versions := c.Filter(level).Versions()
	if len(versions) == 0 {
		return "", false
	}
	return versions[0], true
}

type suggestion struct {
	version    string
	similarity float64
}

// Suggest returns up to n versions of the catalog that look the most like
// the given one.
func (c Catalog) Suggest(version string, n int) []string {
	if n <= 0 {
		return nil
	}

	var candidates []suggestion
	for known := range c {
		similarity := matchr.JaroWinkler(version, known, false)
		if similarity > 0 {
			candidates = append(candidates, suggestion{version: known, similarity: similarity})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity == candidates[j].similarity {
			return strings.Compare(candidates[i].version, candidates[j].version) < 0
		}
		return candidates[i].similarity > candidates[j].similarity
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, s := range candidates {
		out[i] = s.version
	}
	return out
}
