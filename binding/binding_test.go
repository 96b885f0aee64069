package binding

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":" Ada ","age":36},"tags":["a",["b","c"]],"ratio":1.5}`)
	cases := []struct {
		in, want string
	}{
		{"hi ${user.name|trim}!", "hi Ada!"},
		{"${user.name|trim|upper}", "ADA"},
		{"${ user.name | trim | lower }", "ada"},
		{"age ${user.age}", "age 36"},
		{"${ratio}", "1.5"},
		{"${tags[0]}-${tags[1][1]}", "a-c"},
		{"${missing}", "${missing}"},
		{"${user.name|bogus}", "${user.name|bogus}"},
		{"${tags[9]}", "${tags[9]}"},
		{"${tags[x]}", "${tags[x]}"},
		{"open ${user.name", "open ${user.name"},
		{"no placeholders", "no placeholders"},
	}
	for _, tc := range cases {
		if got := Interpolate(tc.in, data); got != tc.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := Interpolate("${user.name}", nil); got != "${user.name}" {
		t.Fatalf("nil data should keep placeholders, got %q", got)
	}
}

func TestMissing(t *testing.T) {
	data := decode(t, `{"a":"x"}`)
	got := Missing("${a} ${b} ${a|nope} ${c.d}", data)
	want := []string{"b", "a|nope", "c.d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing = %v, want %v", got, want)
	}
}
