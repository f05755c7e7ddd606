package unity

import (
	"fmt"
	"regexp"
	"u3d/internal/platform"
)

const (
	macDownloadExpr   = `"(https?://[\w/\.-]+/[0-9a-f]{12}/)MacEditorInstaller/[a-zA-Z0-9/\.]+-(\d+\.\d+\.\d+\w\d+)\.?\w+"`
	winDownloadExpr   = `"(https?://[\w/\.-]+/[0-9a-f]{12}/)Windows..EditorInstaller/[a-zA-Z0-9/\.]+-(\d+\.\d+\.\d+\w\d+)\.?\w+"`
	linuxDownloadExpr = `"(https?://[\w/\._-]+/unity\-editor\-installer\-(\d+\.\d+\.\d+\w\d+).*\.sh)"`
	betaTokenExpr     = `/unity/beta/unity(\d+\.\d+\.\d+\w\d+)"`
)

// PagePattern captures (url, version) pairs out of a page.
type PagePattern struct {
	Regexp       *regexp.Regexp
	URLGroup     int
	VersionGroup int
}

func NewPagePattern(expr string, urlGroup, versionGroup int) (PagePattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return PagePattern{}, err
	}
	groups := re.NumSubexp()
	if urlGroup < 1 || urlGroup > groups || versionGroup < 1 || versionGroup > groups {
		return PagePattern{}, fmt.Errorf(
			"pattern %q has %d groups, cannot use url group %d and version group %d",
			expr, groups, urlGroup, versionGroup,
		)
	}
	return PagePattern{Regexp: re, URLGroup: urlGroup, VersionGroup: versionGroup}, nil
}

func MustPagePattern(expr string, urlGroup, versionGroup int) PagePattern {
	p, err := NewPagePattern(expr, urlGroup, versionGroup)
	if err != nil {
		panic(err)
	}
	return p
}

// TokenPattern captures a single value (a beta version) out of a page.
type TokenPattern struct {
	Regexp *regexp.Regexp
	Group  int
}

type PatternSet struct {
	Mac       PagePattern
	Windows   PagePattern
	Linux     PagePattern
	BetaToken TokenPattern
}

func DefaultPatterns() PatternSet {
	return PatternSet{
		Mac:     MustPagePattern(macDownloadExpr, 1, 2),
		Windows: MustPagePattern(winDownloadExpr, 1, 2),
		Linux:   MustPagePattern(linuxDownloadExpr, 1, 2),
		BetaToken: TokenPattern{
			Regexp: regexp.MustCompile(betaTokenExpr),
			Group:  1,
		},
	}
}

func (s PatternSet) ForOS(os platform.OS) (PagePattern, error) {
	switch os {
	case platform.Linux:
		return s.Linux, nil
	case platform.Mac:
		return s.Mac, nil
	case platform.Windows:
		return s.Windows, nil
	default:
		return PagePattern{}, os.Validate()
	}
}

// withDefaults fills every pattern left unset with its default.
func (s PatternSet) withDefaults() PatternSet {
	defaults := DefaultPatterns()
	if s.Mac.Regexp == nil {
		s.Mac = defaults.Mac
	}
	if s.Windows.Regexp == nil {
		s.Windows = defaults.Windows
	}
	if s.Linux.Regexp == nil {
		s.Linux = defaults.Linux
	}
	if s.BetaToken.Regexp == nil {
		s.BetaToken = defaults.BetaToken
	}
	return s
}
