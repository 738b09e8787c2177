package plan

import (
	"reflect"

	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/naming"
)

// Op is a plan instruction.
type Op uint8

const (
	// OpReturn ends the program.
	OpReturn Op = iota
	OpStartObject
	OpEndObject
	OpStartArray
	OpEndArray
	// OpName writes Names[Arg].
	OpName
	// OpKeyName writes the current key of site Arg.
	OpKeyName
	// OpGuard writes null and jumps to Jump when slot Slot is nil.
	OpGuard
	// OpDeref replaces slot Slot with the value it points to.
	OpDeref
	// OpField loads field Index of slot Slot into slot Dst.
	OpField
	// OpMethod loads the result of getter Arg on slot Slot into slot Dst.
	OpMethod
	// OpConvert writes slot Slot with Converters[Arg]. It is the only
	// step execution may suspend before.
	OpConvert
	// OpIterInit starts site Arg over the collection in slot Slot.
	OpIterInit
	// OpIterNext loads the next element of site Arg into slot Dst, or
	// jumps to Jump when the site is exhausted.
	OpIterNext
	// OpJump continues at Jump.
	OpJump
)

var opNames = [...]string{
	OpReturn:      "return",
	OpStartObject: "start_object",
	OpEndObject:   "end_object",
	OpStartArray:  "start_array",
	OpEndArray:    "end_array",
	OpName:        "name",
	OpKeyName:     "key_name",
	OpGuard:       "guard",
	OpDeref:       "deref",
	OpField:       "field",
	OpMethod:      "method",
	OpConvert:     "convert",
	OpIterInit:    "iter_init",
	OpIterNext:    "iter_next",
	OpJump:        "jump",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Step is one instruction. Which operands are meaningful depends on Op.
type Step struct {
	Op    Op
	Slot  int
	Dst   int
	Arg   int
	Jump  int
	Index []int
}

// Name is a rendered property name and its pre-encoded `"name":` form.
type Name struct {
	Text    string
	Encoded string
}

// SiteKind selects how an iteration site walks its collection.
type SiteKind uint8

const (
	SiteArray SiteKind = iota
	SiteSlice
	SiteList
	SiteValueIter
	SiteRefIter
	SiteMap
	SiteKeyedMap
)

var siteNames = [...]string{
	SiteArray:     "array",
	SiteSlice:     "slice",
	SiteList:      "list",
	SiteValueIter: "value-iter",
	SiteRefIter:   "ref-iter",
	SiteMap:       "map",
	SiteKeyedMap:  "keyed-map",
}

func (k SiteKind) String() string {
	if int(k) < len(siteNames) {
		return siteNames[k]
	}
	return "unknown"
}

// IsMap reports whether the site produces keys.
func (k SiteKind) IsMap() bool { return k == SiteMap || k == SiteKeyedMap }

// Site describes one iteration site. Method fields index the method set
// of the collection receiver (the collection type, or a pointer to it
// when PtrRecv is set); Next and Value index the iterator's method set.
type Site struct {
	Kind     SiteKind
	Type     reflect.Type
	PtrRecv  bool
	Len, At  int
	Keys     int
	Get      int
	Iter     int
	Next     int
	Value    int
	IterType reflect.Type
	// Path is the member path of the collection, for diagnostics.
	Path string
}

// Captured is the part of an option set frozen into a plan.
type Captured struct {
	NamingPolicy naming.Policy
	MapKeyPolicy naming.Policy
	EscapeHTML   bool
}

// Plan is a compiled serializer for exactly one Go type.
type Plan struct {
	Root       reflect.Type
	Steps      []Step
	Names      []Name
	Converters []convert.Converter
	Sites      []Site
	// Depth is the slot arena size.
	Depth    int
	Captured Captured
	// Options is the option set the plan was compiled against. Converters
	// receive it on every write.
	Options *convert.Options
}

// ConvertSteps counts OpConvert steps, the plan's suspend points.
func (p *Plan) ConvertSteps() int {
	n := 0
	for i := range p.Steps {
		if p.Steps[i].Op == OpConvert {
			n++
		}
	}
	return n
}
