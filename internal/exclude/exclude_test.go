package exclude

import "testing"

func TestDottedNamesAlwaysExcluded(t *testing.T) {
	policies := []*Policy{
		NewPolicy(false, nil),
		NewPolicy(true, nil),
		NewPolicy(true, []string{"*"}),
	}
	for _, p := range policies {
		if !p.Exclude("/home/ana/.config", ".config") {
			t.Fatalf("expected dotted name to be excluded")
		}
		if !p.Exclude("/home/ana/.DS_Store", ".DS_Store") {
			t.Fatalf("expected dotted file to be excluded")
		}
	}
}

func TestUniversalBlocklist(t *testing.T) {
	p := NewPolicy(false, nil)
	for _, name := range []string{"node_modules", "__pycache__", "target", "vendor"} {
		if !p.Exclude("/src/app/"+name, name) {
			t.Errorf("expected %q to be excluded unconditionally", name)
		}
	}
	if p.Exclude("/home/ana/Documents", "Documents") {
		t.Fatalf("Documents should not be excluded")
	}
}

func TestSystemExclusionsRespectFlag(t *testing.T) {
	path := "/Users/ana/Library/Caches/thing"

	if NewPolicy(false, nil).Exclude(path, "thing") {
		t.Fatalf("system exclusion applied while disabled")
	}
	if !NewPolicy(true, nil).Exclude(path, "thing") {
		t.Fatalf("system exclusion not applied while enabled")
	}
}

func TestCustomPatterns(t *testing.T) {
	p := NewPolicy(false, []string{"A", "*.bak"})

	if !p.Exclude("/root/A", "A") {
		t.Fatalf("expected literal name pattern to match")
	}
	if !p.Exclude("/root/old.bak", "old.bak") {
		t.Fatalf("expected glob pattern to match")
	}
	if p.Exclude("/root/Archive", "Archive") {
		t.Fatalf("pattern A must not match Archive")
	}
}

func TestCustomPathPattern(t *testing.T) {
	p := NewPolicy(false, []string{"projects/secret"})
	if !p.Exclude("/home/ana/projects/secret", "secret") {
		t.Fatalf("expected path pattern to match")
	}
	if p.Exclude("/home/ana/projects/public", "public") {
		t.Fatalf("path pattern matched unrelated entry")
	}
}
