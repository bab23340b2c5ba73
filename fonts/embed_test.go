package fonts

import "testing"

func TestLoad(t *testing.T) {
	for _, name := range []string{"goregular", "embed:gobold", "goitalic.ttf"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned no data", name)
		}
	}
	if _, err := Load("Inter-Regular"); err == nil {
		t.Fatalf("unknown font should fail")
	}
	if names := Names(); len(names) != 4 || names[0] != "gobold" {
		t.Fatalf("unexpected names %v", names)
	}
}
