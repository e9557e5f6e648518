package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"/a/b/", "/a/b"},
		{"/a/./b/../c", "/a/c"},
		{"rel/path", "rel/path"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChildUnder(t *testing.T) {
	cases := []struct {
		parent, path string
		want         string
		ok           bool
	}{
		{"/root", "/root/a/b/c.txt", "/root/a", true},
		{"/root", "/root/a", "/root/a", true},
		{"/root", "/root", "", false},
		{"/root", "/rootless/a", "", false},
		{"/", "/a/b", "/a", true},
	}
	for _, tc := range cases {
		got, ok := ChildUnder(tc.parent, tc.path)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ChildUnder(%q, %q) = %q, %v; want %q, %v",
				tc.parent, tc.path, got, ok, tc.want, tc.ok)
		}
	}
}
