package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type generateRequest struct {
	Count    int    `json:"count" yaml:"count"`
	Seed     uint64 `json:"seed" yaml:"seed"`
	MaxDepth int    `json:"max_depth" yaml:"max_depth"`
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"req.yaml": "count: 3\nseed: 42\nmax_depth: 2\n",
		"req.json": `{"count":3,"seed":42,"max_depth":2}`,
		"req.txt":  "count: 3\nseed: 42\nmax_depth: 2\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		var req generateRequest
		if err := LoadRequest(path, &req); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if req != (generateRequest{Count: 3, Seed: 42, MaxDepth: 2}) {
			t.Errorf("%s: req = %+v", name, req)
		}
	}

	var req generateRequest
	if err := LoadRequest(filepath.Join(dir, "missing.yaml"), &req); err == nil {
		t.Error("LoadRequest of missing file should fail")
	}
	if err := ParseRequest([]byte("{bad"), "x.json", &req); err == nil {
		t.Error("ParseRequest should fail on malformed JSON")
	}
}

func TestLoadRequestFrom(t *testing.T) {
	var req generateRequest
	if err := LoadRequestFrom(strings.NewReader(`{"count":2}`), &req); err != nil || req.Count != 2 {
		t.Fatalf("JSON: %+v, %v", req, err)
	}
	req = generateRequest{}
	if err := LoadRequestFrom(strings.NewReader("seed: 7\n"), &req); err != nil || req.Seed != 7 {
		t.Fatalf("YAML: %+v, %v", req, err)
	}
	if err := LoadRequestFrom(strings.NewReader("count: [1"), &req); err == nil {
		t.Error("LoadRequestFrom should fail on malformed input")
	}
}
