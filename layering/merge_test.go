package layering

import (
	"reflect"
	"testing"
)

type loaderConfig struct {
	DefaultRoute string
	MaxRedirects int
	UseHash      *bool
	Titles       map[string]string
	Routes       []string
	unexported   string
}

func boolPtr(v bool) *bool { return &v }

func TestMergeLayersFillsZeroFieldsFromWeakerLayers(t *testing.T) {
	strong := loaderConfig{
		DefaultRoute: "home",
		Titles:       map[string]string{"home": "Start"},
	}
	weak := loaderConfig{
		DefaultRoute: "landing",
		MaxRedirects: 4,
		UseHash:      boolPtr(true),
		Titles:       map[string]string{"home": "Home", "settings": "Settings"},
		Routes:       []string{"home", "settings"},
	}

	got := MergeLayers(strong, weak)
	want := loaderConfig{
		DefaultRoute: "home",
		MaxRedirects: 4,
		UseHash:      boolPtr(true),
		Titles:       map[string]string{"home": "Start", "settings": "Settings"},
		Routes:       []string{"home", "settings"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged mismatch:\nwant: %#v\n got: %#v", want, got)
	}

	got.Titles["settings"] = "changed"
	*got.UseHash = false
	if weak.Titles["settings"] != "Settings" || !*weak.UseHash {
		t.Fatalf("expected merge result to be detached from inputs")
	}
}

func TestMergeLayersStrongPointerWins(t *testing.T) {
	got := MergeLayers(
		loaderConfig{UseHash: boolPtr(false)},
		loaderConfig{UseHash: boolPtr(true)},
	)
	if got.UseHash == nil || *got.UseHash {
		t.Fatalf("expected strong false to win, got %v", got.UseHash)
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	type sample struct {
		Value int
	}
	var zero sample
	if got := MergeLayers[sample](); got != zero {
		t.Fatalf("expected MergeLayers() to return zero value, got %+v", got)
	}
}

func TestMergeLayersMaps(t *testing.T) {
	got := MergeLayers(
		map[string]any{"a": 1, "nested": map[string]any{"x": "strong"}},
		map[string]any{"b": 2, "nested": map[string]any{"x": "weak", "y": "weak"}},
	)
	want := map[string]any{
		"a":      1,
		"b":      2,
		"nested": map[string]any{"x": "strong", "y": "weak"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}
