package catalog

import (
	"fmt"
	"strings"
)

// Level is a release level a user can filter the catalog by.
type Level string

const (
	LevelAll    Level = ""
	LevelStable Level = "stable"
	LevelPatch  Level = "patch"
	LevelBeta   Level = "beta"
	LevelAlpha  Level = "alpha"
)

func Levels() []Level {
	return []Level{LevelStable, LevelPatch, LevelBeta, LevelAlpha}
}

func ParseLevel(value string) (Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return LevelAll, nil
	}
	for _, level := range Levels() {
		if string(level) == value {
			return level, nil
		}
	}
	return LevelAll, fmt.Errorf("unknown release level %q", value)
}

func (l Level) Includes(v Version) bool {
	switch l {
	case LevelAll:
		return true
	case LevelStable:
		return v.Type == Final
	case LevelPatch:
		return v.Type == Patch
	case LevelBeta:
		return v.Type == Beta
	case LevelAlpha:
		return v.Type == Alpha
	default:
		return false
	}
}

// ResolveAlias maps latest, latest_patch and latest_beta to the matching
// version in the catalog. Any other value is returned unchanged.
func (c Catalog) ResolveAlias(value string) (string, bool) {
	var level Level
	switch value {
	case "latest", "latest_stable":
		level = LevelStable
	case "latest_patch":
		level = LevelPatch
	case "latest_beta":
		level = LevelBeta
	default:
		return value, true
	}
	return c.Latest(level)
}
