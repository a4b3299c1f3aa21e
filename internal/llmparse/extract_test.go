package llmparse

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"markdown fenced", "Here:\n```json\n{\"rust\": 0.9}\n```\nenjoy", `{"rust": 0.9}`},
		{"nested braces", `prose {"a": {"b": 2}} trailing`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "has } inside"}`, `{"a": "has } inside"}`},
		{"escaped quote in string", `{"a": "quote \" then } brace"}`, `{"a": "quote \" then } brace"}`},
		{"no object", "nothing here", ""},
		{"unbalanced", `{"a": 1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.in); got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	in := "Sure:\n```json\n[{\"source_tag\": \"a\"}]\n```"
	want := `[{"source_tag": "a"}]`
	if got := ExtractJSONArray(in); got != want {
		t.Errorf("ExtractJSONArray() = %q, want %q", got, want)
	}
	if got := ExtractJSONArray("no array"); got != "" {
		t.Errorf("ExtractJSONArray() on prose = %q, want empty", got)
	}
}

func TestClamp01(t *testing.T) {
	cases := map[float64]float64{-0.5: 0, 0: 0, 0.7: 0.7, 1: 1, 2.5: 1}
	for in, want := range cases {
		if got := Clamp01(in); got != want {
			t.Errorf("Clamp01(%v) = %v, want %v", in, got, want)
		}
	}
}
