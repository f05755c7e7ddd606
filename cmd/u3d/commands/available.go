package commands

import (
	"fmt"
	"io"
	"u3d/internal/catalog"
	"u3d/internal/components/telemetry"
	"u3d/internal/platform"
	"u3d/internal/scrapers/unity"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	availableOS      *string
	availableLevel   *string
	availableVersion *string
)

func init() {
	availableOS = availableCmd.Flags().StringP("operating_system", "o", "", "Checks for availability on a specific platform [linux,mac,win].")
	availableLevel = availableCmd.Flags().StringP("release_level", "r", "", "Checks for availability on a specific release level [stable,patch,beta,alpha].")
	availableVersion = availableCmd.Flags().StringP("unity_version", "u", "", "Checks if the specified version (or latest, latest_patch, latest_beta) is available.")
	rootCmd.AddCommand(availableCmd)
}

var availableCmd = &cobra.Command{
	Use:   "available [-o | --operating_system <os>] [-r | --release_level <level>] [-u | --unity_version <version>]",
	Short: "Lists the Unity versions available for download.",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveOS(*availableOS)
		if err != nil {
			return err
		}
		level, err := catalog.ParseLevel(*availableLevel)
		if err != nil {
			return err
		}

		discoverer := newDiscoverer(cfg, colorNotifier{out: cmd.ErrOrStderr()})
		result, err := discoverer.Discover(cmd.Context(), target)
		if err != nil {
			return err
		}

		if *availableVersion != "" {
			return printVersion(cmd.OutOrStdout(), result, level, *availableVersion)
		}
		printCatalog(cmd.OutOrStdout(), result.Filter(level))
		return nil
	},
}

func resolveOS(value string) (platform.OS, error) {
	if value == "" {
		return platform.Current()
	}
	return platform.Parse(value)
}

func newDiscoverer(c Config, notifier unity.Notifier) *unity.Discoverer {
	tel := telemetry.SlogAPI{}
	fetcher := unity.NewHTTPFetcher(c.fetcherOptions(), tel)
	return unity.NewDiscoverer(fetcher, unity.Options{
		Endpoints:  c.Endpoints,
		Notifier:   notifier,
		Concurrent: c.Concurrent,
	}, tel)
}

func releaseName(version string) string {
	v, err := catalog.ParseVersion(version)
	if err != nil {
		return "unknown"
	}
	for _, level := range catalog.Levels() {
		if level.Includes(v) {
			return string(level)
		}
	}
	return "unknown"
}

func printCatalog(w io.Writer, result catalog.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Version", "Release", "URL"})

	for _, version := range result.Versions() {
		t.AppendRow(table.Row{version, releaseName(version), result[version]})
	}

	t.AppendFooter(table.Row{"", "Total", len(result)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// printVersion reports whether one version is in the catalog, resolving the
// latest aliases first.
// printVersion resolves requested against the whole catalog, level only narrows
// the suggestions offered when the version is missing.
func printVersion(w io.Writer, result catalog.Catalog, level catalog.Level, requested string) error {
	version, ok := result.ResolveAlias(requested)
	if !ok {
		return fmt.Errorf("no version matches %s", requested)
	}

	url, ok := result[version]
	if ok {
		fmt.Fprintf(w, "Version %s is available at %s\n", version, url)
		return nil
	}

	suggestions := result.Filter(level).Suggest(version, 3)
	if len(suggestions) > 0 {
		importantColor.Fprintln(w, "Did you mean:")
		for _, s := range suggestions {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	return fmt.Errorf("version %s is not available", version)
}
