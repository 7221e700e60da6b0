package vpackjson

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/vparc/vpack"
	"github.com/vparc/vpack/slice"
)

func TestBuildThenDump_RoundTrips(t *testing.T) {
	cases := []string{
		`null`,
		`true`,
		`false`,
		`42`,
		`-7`,
		`3.5`,
		`"hello"`,
		`[]`,
		`{}`,
		`[1,2,3]`,
		`{"a":1,"b":[true,false,null],"c":{"d":"e"}}`,
	}
	for _, in := range cases {
		b := vpack.New(vpack.Options{})
		if err := Build(b, []byte(in)); err != nil {
			t.Fatalf("Build(%s): %v", in, err)
		}
		out, err := DumpString(slice.New(b.Bytes()))
		if err != nil {
			t.Fatalf("Dump(%s): %v", in, err)
		}

		var wantAny, gotAny any
		if err := json.Unmarshal([]byte(in), &wantAny); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal([]byte(out), &gotAny); err != nil {
			t.Fatalf("Dump produced invalid JSON %q: %v", out, err)
		}
		if !reflect.DeepEqual(wantAny, gotAny) {
			t.Fatalf("round-trip mismatch for %s: got %s", in, out)
		}
	}
}
