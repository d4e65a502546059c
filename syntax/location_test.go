package syntax

import "testing"

func TestLocationString(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{"line only", NewLocation("test.hsk", 3), "test.hsk:3"},
		{"line and column", NewLocationCol("test.hsk", 3, 7), "test.hsk:3:7"},
		{"column zero", NewLocationCol("test.hsk", 1, 0), "test.hsk:1:0"},
		{"default name", NewLocation("<code>", 12), "<code>:12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		input string
		want  Location
	}{
		{"test.hsk:3", NewLocation("test.hsk", 3)},
		{"test.hsk:3:7", NewLocationCol("test.hsk", 3, 7)},
		{"dir/with:colon.hsk:9", NewLocation("dir/with:colon.hsk", 9)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocation(tt.input)
			if err != nil {
				t.Fatalf("ParseLocation(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLocationRoundTrip(t *testing.T) {
	for _, loc := range []Location{
		NewLocation("a.hsk", 1),
		NewLocationCol("a.hsk", 10, 4),
	} {
		got, err := ParseLocation(loc.String())
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", loc.String(), err)
		}
		if got != loc {
			t.Errorf("round trip of %v = %v", loc, got)
		}
	}
}

func TestParseLocationErrors(t *testing.T) {
	for _, input := range []string{"", "nocolon", "file:xyz"} {
		if _, err := ParseLocation(input); err == nil {
			t.Errorf("ParseLocation(%q) err = nil, want error", input)
		}
	}
}

func TestLocationIsZero(t *testing.T) {
	if !(Location{}).IsZero() {
		t.Error("zero Location should report IsZero")
	}
	if NewLocation("f", 1).IsZero() {
		t.Error("populated Location should not report IsZero")
	}
}
