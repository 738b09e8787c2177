package plan

import (
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/jsonplan/convert"
)

// handPlan is the program for struct{ A []int }.
func handPlan() *Plan {
	return &Plan{
		Root: reflect.TypeOf(struct{ A []int }{}),
		Steps: []Step{
			{Op: OpStartObject},
			{Op: OpName, Arg: 0},
			{Op: OpField, Slot: 0, Dst: 1, Index: []int{0}},
			{Op: OpGuard, Slot: 1, Jump: 10},
			{Op: OpStartArray},
			{Op: OpIterInit, Slot: 1, Arg: 0},
			{Op: OpIterNext, Arg: 0, Dst: 2, Jump: 9},
			{Op: OpConvert, Slot: 2, Arg: 0},
			{Op: OpJump, Jump: 6},
			{Op: OpEndArray},
			{Op: OpEndObject},
			{Op: OpReturn},
		},
		Names:      []Name{{Text: "A", Encoded: `"A":`}},
		Converters: []convert.Converter{convert.Int},
		Sites:      []Site{{Kind: SiteSlice, Type: reflect.TypeOf([]int{})}},
		Depth:      3,
	}
}

func TestOp_String(t *testing.T) {
	if OpIterNext.String() != "iter_next" {
		t.Errorf("OpIterNext = %v, want iter_next", OpIterNext)
	}
	if Op(200).String() != "unknown" {
		t.Errorf("Op(200) = %v, want unknown", Op(200))
	}
	if SiteKeyedMap.String() != "keyed-map" || !SiteKeyedMap.IsMap() || SiteList.IsMap() {
		t.Error("site kind helpers disagree")
	}
}

func TestPlan_ConvertSteps(t *testing.T) {
	if n := handPlan().ConvertSteps(); n != 1 {
		t.Errorf("ConvertSteps = %d, want 1", n)
	}
}

func TestDisassemble(t *testing.T) {
	out := Disassemble(handPlan())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 13 {
		t.Fatalf("got %d lines, want 13:\n%s", len(lines), out)
	}

	for _, want := range []string{
		"12 steps, depth 3, 1 sites",
		`0001 name`,
		`"A"`,
		"0003 guard        slot=1 else=0010",
		"0006 iter_next    site=0 -> 2 done=0009",
		"0008 jump         0006",
		"site=0 slice []int",
		"0011 return",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}
