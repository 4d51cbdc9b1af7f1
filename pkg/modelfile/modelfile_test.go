package modelfile

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/White-Green/MkMarkov/pkg/chain"
	"github.com/White-Green/MkMarkov/pkg/segment"
	"github.com/White-Green/MkMarkov/pkg/storage"
)

func testModel(t *testing.T) *chain.Model {
	t.Helper()
	b := &chain.Builder{Segmenter: segment.Spaces{}}
	return b.Build([]string{
		"hello :wave: $[x2.speed=2s,left big] world",
		"$[flip.h $[x2 nested]]\n",
		"",
		"日本語 のテキスト",
	}).Model()
}

func sameModel(t *testing.T, got, want *chain.Model) {
	t.Helper()
	if !reflect.DeepEqual(got.Transitions(), want.Transitions()) {
		t.Errorf("transitions differ:\n got %v\nwant %v", got.Transitions(), want.Transitions())
	}
	if !reflect.DeepEqual(got.Params(), want.Params()) {
		t.Errorf("params differ:\n got %v\nwant %v", got.Params(), want.Params())
	}
}

func TestRoundTrip(t *testing.T) {
	m := testModel(t)
	for _, f := range []Format{MsgPack, JSON} {
		for _, compress := range []bool{false, true} {
			opts := Options{Format: f, Compress: compress}
			t.Run(opts.Ext(), func(t *testing.T) {
				var buf bytes.Buffer
				if err := Encode(&buf, m, opts); err != nil {
					t.Fatalf("Encode: %v", err)
				}
				if compress != bytes.HasPrefix(buf.Bytes(), zstdMagic) {
					t.Errorf("compressed = %v, zstd magic present = %v", compress, !compress)
				}
				got, err := Decode(&buf)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				sameModel(t, got, m)
			})
		}
	}
}

func TestDecodeLegacyJSON(t *testing.T) {
	const legacy = `{"token_map":[
		["Start",{"String":"hi"},3],
		[{"String":"hi"},{"Function":"x2"},1],
		[{"FunctionStart":"x2"},"End",1],
		[{"Function":"x2"},"End",1],
		[{"String":"hi"},"End",2]
	],"function_param_map":[
		["x2","speed","None",0],
		["x2","speed",{"Value":"2s"},1],
		["x2","left","ValueIsNull",1],
		["x2","left","None",0]
	]}`

	m, err := Decode(strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	succ := m.Successors(chain.Word("hi"))
	if len(succ) != 2 || succ[0].To != chain.Call("x2") || succ[1].To != chain.End() {
		t.Errorf("Successors(hi) = %v", succ)
	}
	if succ := m.Successors(chain.Body("x2")); len(succ) != 1 {
		t.Errorf("Successors(body x2) = %v", succ)
	}

	keys := m.Parameters("x2")
	if len(keys) != 2 || keys[0].Key != "speed" || keys[1].Key != "left" {
		t.Fatalf("Parameters(x2) = %v", keys)
	}
	if v := keys[0].Choices[1].Value; v != chain.WithValue("2s") {
		t.Errorf("speed value = %v", v)
	}
	if v := keys[1].Choices[0].Value; v != chain.NoValue() {
		t.Errorf("left value = %v", v)
	}
}

func TestEncodeJSONLayout(t *testing.T) {
	m := chain.NewModel([]chain.Transition{
		{From: chain.Start(), To: chain.Word("a"), Count: 1},
	}, []chain.ParamCount{
		{Function: "f", Key: "k", Value: chain.Absent(), Count: 2},
	})
	var buf bytes.Buffer
	if err := Encode(&buf, m, Options{Format: JSON}); err != nil {
		t.Fatal(err)
	}
	want := `{"token_map":[["Start",{"String":"a"},1]],"function_param_map":[["f","k","None",2]]}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("JSON =\n%s\nwant\n%s", got, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"bad json", `{"token_map": [`},
		{"bad variant", `{"token_map":[["Nope","End",1]],"function_param_map":[]}`},
		{"unit with text", `{"token_map":[[{"Start":"x"},"End",1]],"function_param_map":[]}`},
		{"short row", `{"token_map":[["Start","End"]],"function_param_map":[]}`},
		{"bad value", `{"token_map":[],"function_param_map":[["f","k",{"None":"x"},1]]}`},
		{"garbage", "\x01\x02\x03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != MsgPack {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != JSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) err = %v", err)
	}
	if err := Encode(&bytes.Buffer{}, chain.NewModel(nil, nil), Options{Format: "xml"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(xml) err = %v", err)
	}
}

func TestSaveLoadList(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := testModel(t)

	p, err := Save(ctx, s, "notes", m, Options{Format: JSON, Compress: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p != "models/notes.json.zst" {
		t.Errorf("path = %q", p)
	}
	if _, err := Save(ctx, s, DefaultName, m, Options{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}

	got, gotPath, err := Load(ctx, s, "notes")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotPath != p {
		t.Errorf("loaded from %q, want %q", gotPath, p)
	}
	sameModel(t, got, m)

	if _, _, err := Load(ctx, s, "models/default.msgpack"); err != nil {
		t.Errorf("Load by path: %v", err)
	}
	if _, _, err := Load(ctx, s, "missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(missing) err = %v", err)
	}

	names, err := List(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{DefaultName, "notes"}) {
		t.Errorf("List = %v", names)
	}
}
