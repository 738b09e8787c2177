package shape

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the structural shape of a type.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindRecord
	KindSequence
	KindMap
)

var kindNames = [...]string{
	KindUnsupported: "unsupported",
	KindRecord:      "record",
	KindSequence:    "sequence",
	KindMap:         "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Strategy selects how a sequence or map is traversed.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	// StrategyArray walks a fixed-size array by index.
	StrategyArray
	// StrategySlice walks a slice by index.
	StrategySlice
	// StrategyList walks a Len() int / At(int) E collection by index.
	StrategyList
	// StrategyValueIter drives an iterator struct stored by value.
	StrategyValueIter
	// StrategyRefIter drives an iterator held by pointer or interface.
	StrategyRefIter
	// StrategyBuiltinMap walks a string-keyed map in sorted key order.
	StrategyBuiltinMap
	// StrategyKeyedMap walks a Keys() []string / Get(string) V collection.
	StrategyKeyedMap
)

var strategyNames = [...]string{
	StrategyNone:       "none",
	StrategyArray:      "array",
	StrategySlice:      "slice",
	StrategyList:       "list",
	StrategyValueIter:  "value-iter",
	StrategyRefIter:    "ref-iter",
	StrategyBuiltinMap: "builtin-map",
	StrategyKeyedMap:   "keyed-map",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// Methods holds method indexes into the method set of Recv.
// Unused entries are -1.
type Methods struct {
	// Recv is the receiver type the indexes refer to: the classified type
	// itself or a pointer to it when the methods need a pointer receiver.
	Recv reflect.Type
	// PtrRecv is set when Recv is a pointer to the classified type.
	PtrRecv bool

	Len, At   int
	Keys, Get int
	Iter      int
	// Next and Value index the method set of IterRecv.
	Next, Value int
	IterType    reflect.Type
	IterRecv    reflect.Type
}

// Member is one emitted property of a record.
type Member struct {
	// Name is the Go field or method name.
	Name string
	// Override is the literal name from a json tag, if any.
	Override string
	// Converter is the converter name from a jsonconv tag, if any.
	Converter string
	Type      reflect.Type
	// Index is the field index path for struct members.
	Index []int
	// Method is the method index for interface members, -1 for fields.
	Method int
}

// Shape describes how a type expands.
type Shape struct {
	Kind     Kind
	Type     reflect.Type
	Strategy Strategy
	// Nullable types need a null guard before expansion.
	Nullable bool

	// Elem is the element type of a sequence or the value type of a map.
	Elem    reflect.Type
	Len     int
	Methods Methods
	Members []Member
	// Reason explains an Unsupported result.
	Reason string
}

var (
	stringType      = reflect.TypeOf("")
	stringSliceType = reflect.TypeOf([]string(nil))
	intType         = reflect.TypeOf(0)
	boolType        = reflect.TypeOf(false)
)

// Nullable reports whether values of t can be nil.
func Nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// Accessible reports whether t can be named from outside its package.
// Predeclared and unnamed composite types are always accessible.
func Accessible(t reflect.Type) bool {
	name := t.Name()
	if name == "" || t.PkgPath() == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// Classify determines the shape of t. Pointer types are classified by the
// caller after unwrapping; Classify treats them as Unsupported.
func Classify(t reflect.Type) *Shape {
	s := &Shape{Type: t, Nullable: Nullable(t), Methods: noMethods()}

	if t.Kind() == reflect.Pointer {
		s.Reason = "pointer types are unwrapped before classification"
		return s
	}

	if classifyMap(t, s) {
		return s
	}
	if s.Reason != "" {
		return s
	}
	if classifySequence(t, s) {
		return s
	}
	if classifyRecord(t, s) {
		return s
	}
	if s.Reason == "" {
		s.Reason = "no JSON representation for kind " + t.Kind().String()
	}
	return s
}

func noMethods() Methods {
	return Methods{Len: -1, At: -1, Keys: -1, Get: -1, Iter: -1, Next: -1, Value: -1}
}

func classifyMap(t reflect.Type, s *Shape) bool {
	if t.Kind() == reflect.Map {
		if t.Key().Kind() != reflect.String {
			s.Reason = "map key type " + t.Key().String() + " is not a string"
			return false
		}
		s.Kind = KindMap
		s.Strategy = StrategyBuiltinMap
		s.Elem = t.Elem()
		return true
	}

	m, ok := lookup(t, func(r reflect.Type, m *Methods) bool {
		keys, ok := method(r, "Keys", nil, stringSliceType)
		if !ok {
			return false
		}
		get, ok := method(r, "Get", []reflect.Type{stringType}, nil)
		if !ok {
			return false
		}
		m.Keys, m.Get = keys.Index, get.Index
		return true
	})
	if !ok {
		return false
	}
	get := m.Recv.Method(m.Get)
	s.Kind = KindMap
	s.Strategy = StrategyKeyedMap
	s.Methods = m
	s.Elem = get.Type.Out(0)
	return true
}

func classifySequence(t reflect.Type, s *Shape) bool {
	switch t.Kind() {
	case reflect.Array:
		s.Kind, s.Strategy, s.Elem, s.Len = KindSequence, StrategyArray, t.Elem(), t.Len()
		return true
	case reflect.Slice:
		s.Kind, s.Strategy, s.Elem = KindSequence, StrategySlice, t.Elem()
		return true
	}

	if m, ok := lookup(t, func(r reflect.Type, m *Methods) bool {
		l, ok := method(r, "Len", nil, intType)
		if !ok {
			return false
		}
		at, ok := method(r, "At", []reflect.Type{intType}, nil)
		if !ok {
			return false
		}
		m.Len, m.At = l.Index, at.Index
		return true
	}); ok {
		s.Kind, s.Strategy, s.Methods = KindSequence, StrategyList, m
		s.Elem = m.Recv.Method(m.At).Type.Out(0)
		return true
	}

	m, ok := lookup(t, func(r reflect.Type, m *Methods) bool {
		it, ok := method(r, "Iter", nil, nil)
		if !ok {
			return false
		}
		m.Iter = it.Index
		m.IterType = it.Type.Out(0)
		return true
	})
	if !ok {
		return false
	}

	iter := m.IterType
	switch iter.Kind() {
	case reflect.Struct:
		// Stored by value, advanced through its address.
		m.IterRecv = reflect.PointerTo(iter)
		s.Strategy = StrategyValueIter
	case reflect.Pointer, reflect.Interface:
		m.IterRecv = iter
		s.Strategy = StrategyRefIter
	default:
		return false
	}
	next, ok := method(m.IterRecv, "Next", nil, boolType)
	if !ok {
		return false
	}
	value, ok := method(m.IterRecv, "Value", nil, nil)
	if !ok {
		return false
	}
	m.Next, m.Value = next.Index, value.Index
	s.Kind, s.Methods = KindSequence, m
	s.Elem = value.Type.Out(0)
	return true
}

// lookup tries match against t, then *t for non-pointer, non-interface
// types whose methods need a pointer receiver.
func lookup(t reflect.Type, match func(r reflect.Type, m *Methods) bool) (Methods, bool) {
	m := noMethods()
	m.Recv = t
	if match(t, &m) {
		return m, true
	}
	if t.Kind() == reflect.Interface {
		return m, false
	}
	m = noMethods()
	m.Recv = reflect.PointerTo(t)
	m.PtrRecv = true
	if match(m.Recv, &m) {
		return m, true
	}
	return m, false
}

// method finds an exported method by name with the given parameters and a
// single result. A nil out accepts any result type.
func method(r reflect.Type, name string, in []reflect.Type, out reflect.Type) (reflect.Method, bool) {
	m, ok := r.MethodByName(name)
	if !ok {
		return m, false
	}
	mt := m.Type
	skip := 0
	if r.Kind() != reflect.Interface {
		skip = 1
	}
	if mt.NumIn()-skip != len(in) || mt.NumOut() != 1 {
		return m, false
	}
	for i, p := range in {
		if mt.In(i+skip) != p {
			return m, false
		}
	}
	if out != nil && mt.Out(0) != out {
		return m, false
	}
	return m, true
}

func classifyRecord(t reflect.Type, s *Shape) bool {
	switch t.Kind() {
	case reflect.Struct:
		s.Kind = KindRecord
		s.Members = structMembers(t)
		return true
	case reflect.Interface:
		s.Kind = KindRecord
		s.Members = interfaceMembers(t)
		return true
	}
	return false
}

// structMembers lists exported fields in declaration order, flattening
// untagged embedded structs. Fields promoted through an embedded pointer
// stay behind that pointer, which is a member itself.
func structMembers(t reflect.Type) []Member {
	var members []Member

	for _, f := range reflect.VisibleFields(t) {
		name, skip := parseTag(f.Tag.Get("json"))
		if skip {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct && name == "" {
			continue
		}
		if !f.IsExported() {
			continue
		}
		if !promotable(t, f.Index) {
			continue
		}
		members = append(members, Member{
			Name:      f.Name,
			Override:  name,
			Converter: f.Tag.Get("jsonconv"),
			Type:      f.Type,
			Index:     f.Index,
			Method:    -1,
		})
	}
	return members
}

// promotable reports whether every embedding step on the path to a field
// is an untagged, non-pointer struct that is not skipped.
func promotable(t reflect.Type, index []int) bool {
	cur := t
	for _, i := range index[:len(index)-1] {
		f := cur.Field(i)
		if f.Type.Kind() != reflect.Struct {
			return false
		}
		if name, skip := parseTag(f.Tag.Get("json")); skip || name != "" {
			return false
		}
		cur = f.Type
	}
	return true
}

// interfaceMembers lists exported getters: methods without parameters
// returning one value, in method set order.
func interfaceMembers(t reflect.Type) []Member {
	var members []Member
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() || m.Type.NumIn() != 0 || m.Type.NumOut() != 1 {
			continue
		}
		members = append(members, Member{
			Name:   m.Name,
			Type:   m.Type.Out(0),
			Method: i,
		})
	}
	return members
}

func parseTag(tag string) (name string, skip bool) {
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}
