package unity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"u3d/internal/catalog"
	"u3d/internal/components/telemetry/telemetrytest"
	"u3d/internal/platform"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func channelRoutes() *routeFetcher {
	endpoints := DefaultEndpoints()
	fetcher := newRouteFetcher()
	fetcher.routes[endpoints.Archive] = okPage(archiveHTML)
	fetcher.routes[endpoints.Patches] = okPage(patchesHTML)
	fetcher.routes[endpoints.BetaIndex] = okPage(betaIndexHTML)
	fetcher.routes[endpoints.BetaPageURL("2018.1.0b4")] = okPage(beta2018b4HTML)
	fetcher.routes[endpoints.BetaPageURL("2018.1.0b5")] = okPage(beta2018b5HTML)
	return fetcher
}

func newTestDiscoverer(fetcher Fetcher, opts Options) (*Discoverer, *noticeRecorder, *telemetrytest.Recorder) {
	notices := &noticeRecorder{}
	rec := &telemetrytest.Recorder{}
	opts.Notifier = notices
	return NewDiscoverer(fetcher, opts, rec), notices, rec
}

func requireWellFormed(t testing.TB, result catalog.Catalog) {
	t.Helper()
	require.NotEmpty(t, result)
	for version, url := range result {
		require.True(t, catalog.IsValidVersion(version), version)
		require.True(t, strings.HasPrefix(url, "https://"), url)
	}
}

func TestDiscoverUnsupported(t *testing.T) {
	fetcher := channelRoutes()
	d, notices, _ := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.OS(42))
	require.Nil(t, result)
	require.ErrorIs(t, err, platform.ErrUnsupported)
	require.Equal(t, 0, fetcher.callCount())
	require.Empty(t, notices.messages())

	_, err = d.Discover(context.Background(), platform.OS(0))
	require.ErrorIs(t, err, platform.ErrUnsupported)
	require.Equal(t, 0, fetcher.callCount())
}

func TestDiscoverMac(t *testing.T) {
	fetcher := channelRoutes()
	d, notices, rec := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	requireWellFormed(t, result)

	expected := catalog.Catalog{
		"2017.1.0f3": "https://download.unity3d.com/download_unity/472613c02cf7/",
		"5.6.1f1":    "https://download.unity3d.com/download_unity/88d00a7498cd/",
		"2017.1.0p1": "https://beta.unity3d.com/download/b1b1e5fbeb1d/",
		"2018.1.0b4": "https://beta.unity3d.com/download/a6d8e5e2a8f0/",
		"2018.1.0b5": "https://beta.unity3d.com/download/c8b3fb4bd7a1/",
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, []string{
		"Loading Unity releases",
		"Found 2 releases.",
		"Loading Unity patch releases",
		"Found 1 patch releases.",
		"Loading Unity beta releases",
		"Found 2 beta releases.",
	}, notices.messages())

	// index, one page per distinct token
	require.Equal(t, 5, fetcher.callCount())

	counts := rec.Find(telemetrytest.KindCount, report_discoverer_versions)
	require.Len(t, counts, 1)
	require.Equal(t, int64(5), counts[0].Count)
}

func TestDiscoverWindows(t *testing.T) {
	d, _, _ := newTestDiscoverer(channelRoutes(), Options{})

	result, err := d.Discover(context.Background(), platform.Windows)
	require.NoError(t, err)
	requireWellFormed(t, result)
	require.Len(t, result, 5)
	require.Equal(t, "https://beta.unity3d.com/download/c8b3fb4bd7a1/", result["2018.1.0b5"])
}

func TestDiscoverMergePrecedence(t *testing.T) {
	endpoints := DefaultEndpoints()
	fetcher := newRouteFetcher()
	fetcher.routes[endpoints.Archive] = okPage(`"https://d.unity3d.com/x/aaaaaaaaaaaa/MacEditorInstaller/Unity-5.6.1f1.pkg"`)
	fetcher.routes[endpoints.Patches] = okPage(`"https://d.unity3d.com/x/bbbbbbbbbbbb/MacEditorInstaller/Unity-5.6.1f1.pkg"`)
	fetcher.routes[endpoints.BetaIndex] = okPage(`<a href="/unity/beta/unity5.6.1f1">`)
	fetcher.routes[endpoints.BetaPageURL("5.6.1f1")] = okPage(`"https://d.unity3d.com/x/cccccccccccc/MacEditorInstaller/Unity-5.6.1f1.pkg"`)

	for _, concurrent := range []bool{false, true} {
		d, _, _ := newTestDiscoverer(fetcher, Options{Concurrent: concurrent})
		result, err := d.Discover(context.Background(), platform.Mac)
		require.NoError(t, err)
		require.Equal(t, catalog.Catalog{"5.6.1f1": "https://d.unity3d.com/x/cccccccccccc/"}, result)
	}

	delete(fetcher.routes, endpoints.BetaPageURL("5.6.1f1"))
	fetcher.routes[endpoints.BetaIndex] = okPage("")
	d, notices, _ := newTestDiscoverer(fetcher, Options{})
	result, err := d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	require.Equal(t, catalog.Catalog{"5.6.1f1": "https://d.unity3d.com/x/bbbbbbbbbbbb/"}, result)
	require.NotContains(t, notices.messages(), "Found 0 beta releases.")
}

func TestDiscoverIdempotent(t *testing.T) {
	d, _, _ := newTestDiscoverer(channelRoutes(), Options{})

	first, err := d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	second, err := d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatal(diff)
	}
}

func TestDiscoverConcurrentMatchesSequential(t *testing.T) {
	for _, os := range []platform.OS{platform.Mac, platform.Windows} {
		sequential, seqNotices, _ := newTestDiscoverer(channelRoutes(), Options{})
		concurrent, conNotices, _ := newTestDiscoverer(channelRoutes(), Options{Concurrent: true})

		expected, err := sequential.Discover(context.Background(), os)
		require.NoError(t, err)
		result, err := concurrent.Discover(context.Background(), os)
		require.NoError(t, err)

		if diff := cmp.Diff(expected, result); diff != "" {
			t.Fatal(diff)
		}
		require.ElementsMatch(t, seqNotices.messages(), conNotices.messages())
	}
}

func TestDiscoverSkipsFailingBeta(t *testing.T) {
	fetcher := channelRoutes()
	fetcher.routes[DefaultEndpoints().BetaPageURL("2018.1.0b4")] = statusPage(http.StatusInternalServerError)
	d, notices, rec := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	require.NotContains(t, result, "2018.1.0b4")
	require.Contains(t, result, "2018.1.0b5")
	require.Contains(t, notices.messages(), "Found 1 beta releases.")

	warnings := rec.Find(telemetrytest.KindWarning, report_beta_resolve)
	require.Len(t, warnings, 1)
	err, ok := warnings[0].Params[0].(error)
	require.True(t, ok)
	require.ErrorIs(t, err, ErrNetwork)
}

func TestDiscoverBetaIndexFailure(t *testing.T) {
	fetcher := channelRoutes()
	fetcher.errs[DefaultEndpoints().BetaIndex] = &NetworkError{
		URL: DefaultEndpoints().BetaIndex,
		Err: errors.New("tls: handshake failure"),
	}
	d, _, rec := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Windows)
	require.Nil(t, result)
	require.ErrorIs(t, err, ErrNetwork)
	require.Len(t, rec.Find(telemetrytest.KindBroken, report_discoverer_discover), 1)
}

func TestDiscoverConcurrentFailure(t *testing.T) {
	fetcher := channelRoutes()
	delete(fetcher.routes, DefaultEndpoints().Patches)
	d, _, _ := newTestDiscoverer(fetcher, Options{Concurrent: true})

	result, err := d.Discover(context.Background(), platform.Mac)
	require.Nil(t, result)
	var networkErr *NetworkError
	require.True(t, errors.As(err, &networkErr))
	require.Equal(t, http.StatusNotFound, networkErr.StatusCode)
}

func TestDiscoverLinux(t *testing.T) {
	fetcher := newRouteFetcher()
	fetcher.routes[DefaultEndpoints().LinuxForum] = okPage(linuxForumHTML)
	d, notices, rec := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Linux)
	require.NoError(t, err)
	requireWellFormed(t, result)
	require.Equal(t, catalog.Catalog{
		"2017.1.0f3": "https://beta.unity3d.com/download/0b02744d4013/unity-editor-installer-2017.1.0f3.sh",
		"5.6.1f1":    "https://beta.unity3d.com/download/6a86e542cf5c/unity-editor-installer-5.6.1f1+20170519.sh",
	}, result)

	require.Equal(t, []string{"Loading Unity releases", "Found 2 releases."}, notices.messages())

	anchors := rec.Find(telemetrytest.KindDebug, report_linux_anchor)
	require.Len(t, anchors, 5)
	last := anchors[len(anchors)-1].Params[0].(string)
	require.True(t, strings.HasPrefix(last, `<a href="https://forum.unity3d.com/`), last)
}

func TestDiscoverLinuxSession(t *testing.T) {
	forum := DefaultEndpoints().LinuxForum
	fetcher := newRouteFetcher()
	fetcher.routes[forum] = redirectPage(apiURL, "xf_session=abc; path=/")
	fetcher.routes[apiURL] = redirectPage(loginURL)
	fetcher.routes[loginURL] = redirectPage(finalURL, "xf_user=42; path=/")
	fetcher.routes[finalURL] = okPage(linuxForumHTML)
	d, _, _ := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Linux)
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, fetchCall{URL: finalURL, Cookie: "xf_session=abc; xf_user=42"}, fetcher.calls[3])
}

func TestDiscoverLinuxEmpty(t *testing.T) {
	fetcher := newRouteFetcher()
	fetcher.routes[DefaultEndpoints().LinuxForum] = okPage("<html>no links today</html>")
	d, notices, _ := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Linux)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Empty(t, result)
	require.Equal(t, []notice{
		{Kind: NoticeMessage, Message: "Loading Unity releases"},
		{Kind: NoticeImportant, Message: "Found no releases"},
	}, notices.notices)
}

func TestDiscoverLinuxAuthenticationFailure(t *testing.T) {
	forum := DefaultEndpoints().LinuxForum
	fetcher := newRouteFetcher()
	fetcher.routes[forum] = redirectPage(apiURL, "xf_session=abc")
	fetcher.routes[apiURL] = okPage("sign in")
	d, _, _ := newTestDiscoverer(fetcher, Options{})

	result, err := d.Discover(context.Background(), platform.Linux)
	require.Nil(t, result)
	require.ErrorIs(t, err, ErrAuthentication)
	require.Equal(t, 2, fetcher.callCount())
}

func TestDiscoverCustomEndpoints(t *testing.T) {
	fetcher := newRouteFetcher()
	fetcher.routes["http://mirror/archive"] = okPage(archiveHTML)
	fetcher.routes["http://mirror/patches"] = okPage(patchesHTML)
	fetcher.routes["http://mirror/betas"] = okPage(betaIndexHTML)
	fetcher.routes["http://mirror/beta/2018.1.0b4"] = okPage(beta2018b4HTML)

	d, _, _ := newTestDiscoverer(fetcher, Options{Endpoints: Endpoints{
		Archive:   "http://mirror/archive",
		Patches:   "http://mirror/patches",
		BetaIndex: "http://mirror/betas",
		BetaPage:  "http://mirror/beta/%s",
	}})

	result, err := d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	require.Len(t, result, 4)
	require.Equal(t, DefaultEndpoints().LinuxForum, d.endpoints.LinuxForum)
}

func TestDiscoverPartialPatterns(t *testing.T) {
	fetcher := channelRoutes()
	fetcher.routes[DefaultEndpoints().LinuxForum] = okPage(linuxForumHTML)
	custom := MustPagePattern(`"(https?://[\w/\.-]+/[0-9a-f]{12}/)MacEditorInstaller/Unity-(2017[\d\.]+\w\d+)\.pkg"`, 1, 2)
	d, _, _ := newTestDiscoverer(fetcher, Options{Patterns: PatternSet{Mac: custom}})

	result, err := d.Discover(context.Background(), platform.Linux)
	require.NoError(t, err)
	require.Len(t, result, 2)

	result, err = d.Discover(context.Background(), platform.Windows)
	require.NoError(t, err)
	require.Len(t, result, 5)

	result, err = d.Discover(context.Background(), platform.Mac)
	require.NoError(t, err)
	require.Equal(t, catalog.Catalog{
		"2017.1.0f3": "https://download.unity3d.com/download_unity/472613c02cf7/",
		"2017.1.0p1": "https://beta.unity3d.com/download/b1b1e5fbeb1d/",
	}, result)
}
