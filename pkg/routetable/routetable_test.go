package routetable_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/pkg/memhost"
	"github.com/goliatone/go-navigator/pkg/routetable"
	"github.com/goliatone/go-navigator/tree"
)

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func names(routes []tree.Route) []string {
	out := make([]string, len(routes))
	for i, route := range routes {
		out[i] = route.Name
	}
	return out
}

func TestLoadYAML(t *testing.T) {
	table, err := routetable.Load(fixture("base.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Config.DefaultRoute != "home" || table.Config.MaxRedirects != 4 || table.Config.Title != "Console" {
		t.Fatalf("unexpected config %+v", table.Config)
	}
	if got := names(table.Routes); !slices.Equal(got, []string{"home", "settings", "admin"}) {
		t.Fatalf("unexpected routes %v", got)
	}

	settings := table.Routes[1]
	if got := names(settings.Children); !slices.Equal(got, []string{"drawer", "profile"}) {
		t.Fatalf("expected children keyed by name, got %v", got)
	}
	drawer, profile := settings.Children[0], settings.Children[1]
	if !profile.SubRoute || !slices.Equal(profile.Params, []string{"id"}) {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if drawer.UpdateURL == nil || *drawer.UpdateURL {
		t.Fatalf("expected drawer to opt out of url updates, got %+v", drawer)
	}
}

func TestLoadJSON(t *testing.T) {
	table, err := routetable.Load(fixture("routes.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !table.Config.Activity.Enabled || table.Config.Activity.Channel != "ui" {
		t.Fatalf("unexpected activity config %+v", table.Config.Activity)
	}
	c := table.Routes[0].Children[0].Children[0]
	if c.Name != "c" || !slices.Equal(c.Params, []string{"x"}) {
		t.Fatalf("unexpected nested route %+v", c)
	}
}

func TestLoadTOMLSplitsParams(t *testing.T) {
	table, err := routetable.Load(fixture("override.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !table.Config.UseHash || table.Config.Base != "/app" {
		t.Fatalf("unexpected config %+v", table.Config)
	}
	reports := table.Routes[1]
	if !slices.Equal(reports.Params, []string{"year", "quarter"}) {
		t.Fatalf("unexpected params %v", reports.Params)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		want error
	}{
		{name: "duplicate sibling", path: fixture("duplicate.json"), want: tree.ErrDuplicateRoute},
		{name: "unknown extension", path: fixture("routes.ini"), want: routetable.ErrUnknownFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := routetable.Load(tc.path); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := routetable.Load(fixture("unknown.yaml")); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if _, err := routetable.Load(fixture("missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestParseRejectsEmptyDocuments(t *testing.T) {
	if _, err := routetable.Parse([]byte("{}"), routetable.FormatJSON, "inline"); !errors.Is(err, routetable.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	_, err := routetable.Parse([]byte("config:\n  title: x\n"), routetable.FormatYAML, "inline")
	if !errors.Is(err, nav.ErrNoRoutesConfigured) {
		t.Fatalf("expected ErrNoRoutesConfigured, got %v", err)
	}
}

func TestLoadLayered(t *testing.T) {
	table, err := routetable.LoadLayered(fixture("base.yaml"), fixture("override.toml"))
	if err != nil {
		t.Fatalf("load layered: %v", err)
	}
	cfg := table.Config
	if cfg.Title != "Admin console" || cfg.DefaultRoute != "home" || cfg.Base != "/app" || cfg.MaxRedirects != 4 {
		t.Fatalf("unexpected layered config %+v", cfg)
	}
	if got := names(table.Routes); !slices.Equal(got, []string{"home", "settings", "admin", "reports"}) {
		t.Fatalf("unexpected layered routes %v", got)
	}
	if admin := table.Routes[2]; admin.Redirect != "settings" {
		t.Fatalf("expected later admin definition to win, got %+v", admin)
	}
}

func TestOptionsDriveNavigator(t *testing.T) {
	table, err := routetable.LoadLayered(fixture("base.yaml"), fixture("override.toml"))
	if err != nil {
		t.Fatalf("load layered: %v", err)
	}
	host := memhost.New("/app")
	n, err := nav.New(host, table.Options()...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := n.Go("settings", nil); err != nil {
		t.Fatalf("go: %v", err)
	}
	if entries := host.Entries(); entries[len(entries)-1].Title != "Settings" {
		t.Fatalf("expected route title, got %+v", entries[len(entries)-1])
	}
	if err := n.Go("settings.profile", nav.RouteParams{"id": "7"}); err != nil {
		t.Fatalf("go: %v", err)
	}
	if loc := host.Location(); loc != "/app#?p=settings&m=settings.profile&settings.profile.id=7" {
		t.Fatalf("unexpected location %q", loc)
	}
	if entries := host.Entries(); entries[len(entries)-1].Title != "Admin console" {
		t.Fatalf("expected configured title, got %+v", entries[len(entries)-1])
	}
}
