package diagram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/orbit/pkg/display"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/scene"
	"github.com/matzehuels/orbit/pkg/state"
)

func sampleTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree := hierarchy.New()
	for _, n := range []struct{ id, parent string }{
		{"R", ""}, {"A", "R"}, {"B", "R"}, {"C", "A"}, {"D", "A"},
	} {
		if err := tree.AddNode(hierarchy.Node{ID: n.id, Name: n.id}, n.parent); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func newDiagram(t *testing.T, opts Options) *Diagram {
	t.Helper()
	if opts.Surface == nil {
		opts.Surface = scene.NewMemorySurface()
	}
	d, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

func TestLoadConfig(t *testing.T) {
	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("cfg = %+v, want defaults", cfg)
		}
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orbit.toml")
		content := `
source = "main"
outer_policy = "highlight-active"
min_transition_millis = 200

[viewport]
min_zoom = 0.25
max_zoom = 8.0

[cache]
backend = "redis"
addr = "localhost:6379"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Source != "main" || cfg.OuterPolicy != "highlight-active" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.MinTransitionMillis != 200 || cfg.Viewport.MaxZoom != 8 {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Cache.Backend != "redis" || cfg.Cache.Addr != "localhost:6379" {
			t.Errorf("cache = %+v", cfg.Cache)
		}
		// Unset field keeps its default.
		if cfg.DebounceMillis != 250 {
			t.Errorf("debounce = %d, want default 250", cfg.DebounceMillis)
		}
	})

	t.Run("InvalidValuesFallBackIndividually", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orbit.toml")
		content := `
min_transition_millis = -5
outer_policy = "sparkle"

[viewport]
min_zoom = 4.0
max_zoom = 1.0

[cache]
backend = "carrier-pigeon"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		def := DefaultConfig()
		if cfg.MinTransitionMillis != def.MinTransitionMillis {
			t.Errorf("min transition = %d, want default", cfg.MinTransitionMillis)
		}
		if cfg.OuterPolicy != def.OuterPolicy {
			t.Errorf("outer policy = %q, want default", cfg.OuterPolicy)
		}
		if cfg.Viewport != (ViewportConfig{}) {
			t.Errorf("viewport = %+v, want zeroed for inverted bounds", cfg.Viewport)
		}
		if cfg.Cache.Backend != def.Cache.Backend {
			t.Errorf("cache backend = %q, want default", cfg.Cache.Backend)
		}
	})

	t.Run("UnparsableFileIsAnError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orbit.toml")
		if err := os.WriteFile(path, []byte("{{{{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig should reject an unparsable file")
		}
	})
}

func TestNewRequiresSurface(t *testing.T) {
	_, err := New(Options{})
	if code := orberrors.GetCode(err); code != orberrors.ErrCodeInvalidContainer {
		t.Errorf("code = %q, want %q", code, orberrors.ErrCodeInvalidContainer)
	}
}

func TestNewRejectsInvalidData(t *testing.T) {
	orphan := hierarchy.New()
	// An empty tree has no root and fails validation.
	_, err := New(Options{Surface: scene.NewMemorySurface(), Data: orphan})
	if code := orberrors.GetCode(err); code != orberrors.ErrCodeInvalidData {
		t.Errorf("code = %q, want %q", code, orberrors.ErrCodeInvalidData)
	}
}

func TestNewSignalsFatalOnConstructionFailure(t *testing.T) {
	var fatal []error
	orphan := hierarchy.New() // no root, fails validation
	_, err := New(Options{
		Surface: scene.NewMemorySurface(),
		Data:    orphan,
		Host:    Host{OnFatal: func(e error) { fatal = append(fatal, e) }},
	})
	if err == nil {
		t.Fatal("New should fail for an invalid initial tree")
	}
	if len(fatal) != 1 {
		t.Fatalf("OnFatal fired %d times, want 1", len(fatal))
	}
	if fatal[0] != err {
		t.Errorf("OnFatal error = %v, want the error New returned (%v)", fatal[0], err)
	}
}

func TestProfileChangeReachesSubscribers(t *testing.T) {
	d := newDiagram(t, Options{Data: sampleTree(t)})

	var got []state.Change
	d.Store().On(state.EventProfileChange, func(c state.Change) { got = append(got, c) })

	d.applyDimensions(d.calc.Calculate(400, 600))  // mobile
	d.applyDimensions(d.calc.Calculate(1200, 800)) // desktop

	if len(got) != 2 {
		t.Fatalf("profile:change fired %d times, want 2: %+v", len(got), got)
	}
	if got[1].Old != display.ProfileMobile || got[1].New != display.ProfileDesktop {
		t.Errorf("profile change = %+v, want mobile -> desktop", got[1])
	}
}

func TestSelectFlow(t *testing.T) {
	var selections [][2]string
	d := newDiagram(t, Options{
		Data: sampleTree(t),
		Host: Host{OnSelect: func(n, o string) { selections = append(selections, [2]string{n, o}) }},
	})

	if err := d.Select("D"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := d.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := d.Store().Selected(); got != "B" {
		t.Errorf("selected = %q, want B", got)
	}
	if len(selections) != 2 || selections[0] != [2]string{"D", ""} || selections[1] != [2]string{"B", "D"} {
		t.Errorf("selections = %v", selections)
	}

	// Unknown node is rejected without state change.
	err := d.Select("Z")
	if code := orberrors.GetCode(err); code != orberrors.ErrCodeInvalidData {
		t.Errorf("code = %q, want %q", code, orberrors.ErrCodeInvalidData)
	}
	if got := d.Store().Selected(); got != "B" {
		t.Errorf("selected = %q after rejected select, want B", got)
	}
}

func TestZoomOperations(t *testing.T) {
	d := newDiagram(t, Options{Data: sampleTree(t)})

	if err := d.Zoom(2); err != nil {
		t.Fatal(err)
	}
	if got := d.Store().State().ZoomLevel; got != 2 {
		t.Errorf("zoom level = %v, want 2", got)
	}

	if err := d.ZoomToNode("C"); err != nil {
		t.Fatal(err)
	}
	// Depth 2 node: max(1, 1+2*0.5) = 2.
	if got := d.Store().State().ZoomLevel; got != 2 {
		t.Errorf("zoom level = %v, want 2 for a depth-2 node", got)
	}

	if err := d.ZoomToNode("Z"); err == nil {
		t.Error("ZoomToNode should reject unknown nodes")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	destroyed := 0
	d := newDiagram(t, Options{
		Data: sampleTree(t),
		Host: Host{OnDestroyed: func() { destroyed++ }},
	})

	d.Destroy()
	d.Destroy()

	if destroyed != 1 {
		t.Errorf("OnDestroyed fired %d times, want 1", destroyed)
	}

	err := d.Select("A")
	if code := orberrors.GetCode(err); code != orberrors.ErrCodeDestroyed {
		t.Errorf("code = %q, want %q", code, orberrors.ErrCodeDestroyed)
	}
	// Resize after destroy is a silent no-op.
	d.Resize(900, 700)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a := newDiagram(t, Options{Data: sampleTree(t)})
	b := newDiagram(t, Options{Data: sampleTree(t)})
	r.Add(a)
	r.Add(b)

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if got, ok := r.Get(a.ID()); !ok || got != a {
		t.Error("Get should return the registered instance")
	}
	if len(r.IDs()) != 2 {
		t.Errorf("IDs = %v", r.IDs())
	}

	destroyed := 0
	c := newDiagram(t, Options{
		Data: sampleTree(t),
		Host: Host{OnDestroyed: func() { destroyed++ }},
	})
	r.Add(c)
	if !r.Destroy(c.ID()) {
		t.Error("Destroy should report success for a known ID")
	}
	if destroyed != 1 {
		t.Error("registry Destroy should tear the instance down")
	}
	if r.Destroy("nope") {
		t.Error("Destroy should report failure for an unknown ID")
	}

	r.DestroyAll()
	if r.Len() != 0 {
		t.Errorf("len = %d after DestroyAll, want 0", r.Len())
	}
}
