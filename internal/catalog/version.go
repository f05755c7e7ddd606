package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type ReleaseType byte

const (
	Alpha ReleaseType = 'a'
	Beta  ReleaseType = 'b'
	Final ReleaseType = 'f'
	Patch ReleaseType = 'p'
)

var releaseRank = map[ReleaseType]int{
	Alpha: 1,
	Beta:  2,
	Final: 3,
	Patch: 4,
}

// Version is a parsed Unity version like 2018.1.0b4.
type Version struct {
	Major int
	Minor int
	Patch int
	Type  ReleaseType
	Build int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%c%d", v.Major, v.Minor, v.Patch, v.Type, v.Build)
}

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)([a-zA-Z])(\d+)$`)

func ParseVersion(value string) (Version, error) {
	groups := versionRegex.FindStringSubmatch(value)
	if groups == nil {
		return Version{}, fmt.Errorf("invalid unity version %q", value)
	}

	var numbers [4]int
	for i, group := range []string{groups[1], groups[2], groups[3], groups[5]} {
		n, err := strconv.Atoi(group)
		if err != nil {
			return Version{}, fmt.Errorf("invalid unity version %q: %w", value, err)
		}
		numbers[i] = n
	}

	return Version{
		Major: numbers[0],
		Minor: numbers[1],
		Patch: numbers[2],
		Type:  ReleaseType(strings.ToLower(groups[4])[0]),
		Build: numbers[3],
	}, nil
}

func IsValidVersion(value string) bool {
	return versionRegex.MatchString(value)
}

func cmpInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Compare returns 1 when a is newer than b, -1 when it is older and 0 when
// they are the same release.
func Compare(a, b Version) int {
	if a.Major != b.Major {
		return cmpInt(a.Major, b.Major)
	}
	if a.Minor != b.Minor {
		return cmpInt(a.Minor, b.Minor)
	}
	if a.Patch != b.Patch {
		return cmpInt(a.Patch, b.Patch)
	}
	if a.Type != b.Type {
		return cmpInt(releaseRank[a.Type], releaseRank[b.Type])
	}
	return cmpInt(a.Build, b.Build)
}
