package cache

import "testing"

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "featured has no target",
			key:  Key{Operation: OpFeatured},
			want: "edge:featured",
		},
		{
			name: "lookup with query",
			key:  Key{Operation: OpLookup, Target: "mars"},
			want: "edge:lookup:mars",
		},
		{
			name: "relay with url",
			key:  Key{Operation: OpRelay, Target: "https://images.example.com/a.jpg"},
			want: "edge:relay:https://images.example.com/a.jpg",
		},
		{
			name: "target is case folded",
			key:  Key{Operation: OpLookup, Target: "Crab Nebula"},
			want: "edge:lookup:crab nebula",
		},
		{
			name: "target whitespace trimmed",
			key:  Key{Operation: OpLookup, Target: "  mars  "},
			want: "edge:lookup:mars",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key{Operation: OpLookup, Target: "Mars"}
	b := Key{Operation: OpLookup, Target: "mars "}
	if a.String() != b.String() {
		t.Errorf("Logically identical keys differ: %q vs %q", a.String(), b.String())
	}
}
