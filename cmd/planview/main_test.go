package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestDump(t *testing.T) {
	out, _, err := execute(t, "dump")
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	for _, name := range sampleNames() {
		if !strings.Contains(out, "; sample "+name+":") {
			t.Errorf("dump output missing sample %q", name)
		}
	}
	if !strings.Contains(out, "return") {
		t.Error("dump output has no return step")
	}
}

func TestSerializeMatchesMarshal(t *testing.T) {
	out, stats, err := execute(t, "serialize", "orders", "--every", "5")
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	want, err := json.Marshal(sampleOrders(50))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSuffix(out, "\n"); got != string(want) {
		t.Errorf("serialize output differs from json.Marshal\ngot:  %.200s\nwant: %.200s", got, want)
	}
	if !strings.Contains(stats, "orders:") {
		t.Errorf("stats = %q, want orders summary", stats)
	}
}

func TestSerializeNaming(t *testing.T) {
	out, _, err := execute(t, "--naming", "snake", "serialize", "order")
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if !strings.Contains(out, `"placed_at":`) || !strings.Contains(out, `"unit_price":`) {
		t.Errorf("snake_case names missing from %s", out)
	}
}

func TestStepPlain(t *testing.T) {
	out, _, err := execute(t, "step", "shapes", "--plain", "--every", "1")
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	// three shapes with two conversions each
	if !strings.HasPrefix(last, "done: 6 chunks, 6 conversions") {
		t.Errorf("last line = %q, want done summary with 6 chunks", last)
	}
}

func TestUnknownSample(t *testing.T) {
	if _, _, err := execute(t, "serialize", "nope"); err == nil {
		t.Fatal("serialize of unknown sample succeeded")
	}
	if _, _, err := execute(t, "--naming", "title", "dump"); err == nil {
		t.Fatal("unknown naming policy accepted")
	}
}
