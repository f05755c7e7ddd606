package unity

import (
	"fmt"
)

type Endpoints struct {
	Archive    string `json:"archive"`
	Patches    string `json:"patches"`
	BetaIndex  string `json:"beta_index"`
	BetaPage   string `json:"beta_page"`
	LinuxForum string `json:"linux_forum"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Archive:    "https://unity3d.com/get-unity/download/archive",
		Patches:    "https://unity3d.com/unity/qa/patch-releases",
		BetaIndex:  "https://unity3d.com/unity/beta/archive",
		BetaPage:   "https://unity3d.com/unity/beta/unity%s",
		LinuxForum: "https://forum.unity3d.com/threads/unity-on-linux-release-notes-and-known-issues.350256/",
	}
}

// withDefaults fills every empty endpoint with its default.
func (e Endpoints) withDefaults() Endpoints {
	defaults := DefaultEndpoints()
	if e.Archive == "" {
		e.Archive = defaults.Archive
	}
	if e.Patches == "" {
		e.Patches = defaults.Patches
	}
	if e.BetaIndex == "" {
		e.BetaIndex = defaults.BetaIndex
	}
	if e.BetaPage == "" {
		e.BetaPage = defaults.BetaPage
	}
	if e.LinuxForum == "" {
		e.LinuxForum = defaults.LinuxForum
	}
	return e
}

func (e Endpoints) BetaPageURL(token string) string {
	return fmt.Sprintf(e.BetaPage, token)
}
