package compiler

import (
	"reflect"

	"github.com/wippyai/jsonplan/compiler/internal/shape"
	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/naming"
	"github.com/wippyai/jsonplan/plan"
	"github.com/wippyai/jsonplan/writer"
)

// node is the tree form of a plan before linearization.
type node any

// guardNode writes null for a nil value, optionally dereferencing
// before the child runs.
type guardNode struct {
	child node
	deref bool
}

type convNode struct {
	conv int
}

type recordNode struct {
	members []memberNode
}

type memberNode struct {
	child  node
	index  []int
	name   int
	method int
}

// iterNode covers sequences and maps; the site kind tells them apart.
type iterNode struct {
	elem node
	site plan.Site
}

type builder struct {
	opts   *convert.Options
	memo   map[reflect.Type]node
	active map[reflect.Type]bool

	converters []convert.Converter
	convIndex  map[convert.Converter]int
	names      []plan.Name
	nameIndex  map[string]int
}

func newBuilder(opts *convert.Options) *builder {
	return &builder{
		opts:      opts,
		memo:      make(map[reflect.Type]node),
		active:    make(map[reflect.Type]bool),
		convIndex: make(map[convert.Converter]int),
		nameIndex: make(map[string]int),
	}
}

// build returns the node for t. m is the member t was declared by, if
// any; members with a converter tag are not shared through the memo.
func (b *builder) build(t reflect.Type, m *shape.Member, path []string) (node, error) {
	if !shape.Accessible(t) {
		return nil, errors.Accessibility(path, t.String())
	}

	memoizable := m == nil || m.Converter == ""
	if memoizable {
		if n, ok := b.memo[t]; ok {
			return n, nil
		}
	}
	if b.active[t] {
		return nil, errors.Recursive(path, t.String())
	}
	b.active[t] = true
	defer delete(b.active, t)

	n, err := b.expand(t, m, path)
	if err != nil {
		return nil, err
	}
	if memoizable {
		b.memo[t] = n
	}
	return n, nil
}

func (b *builder) expand(t reflect.Type, m *shape.Member, path []string) (node, error) {
	c, err := b.resolve(t, m, path)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return guard(t, &convNode{conv: b.converter(c)}), nil
	}

	if t.Kind() == reflect.Pointer {
		child, err := b.build(t.Elem(), nil, path)
		if err != nil {
			return nil, err
		}
		return &guardNode{child: child, deref: true}, nil
	}

	s := shape.Classify(t)
	var n node
	switch s.Kind {
	case shape.KindRecord:
		n, err = b.record(s, path)
	case shape.KindSequence, shape.KindMap:
		n, err = b.collection(s, path)
	default:
		return nil, errors.Unsupported(errors.PhaseCompile, path, t.String(), s.Reason)
	}
	if err != nil {
		return nil, err
	}
	return guard(t, n), nil
}

func guard(t reflect.Type, n node) node {
	if shape.Nullable(t) {
		return &guardNode{child: n}
	}
	return n
}

func (b *builder) record(s *shape.Shape, path []string) (node, error) {
	rn := &recordNode{members: make([]memberNode, 0, len(s.Members))}
	seen := make(map[string]bool, len(s.Members))
	for i := range s.Members {
		m := &s.Members[i]
		// First member in declaration order owns a rendered name.
		rendered := b.memberName(m)
		if seen[rendered] {
			continue
		}
		seen[rendered] = true

		child, err := b.build(m.Type, m, appendPath(path, m.Name))
		if err != nil {
			return nil, err
		}
		rn.members = append(rn.members, memberNode{
			child:  child,
			index:  m.Index,
			name:   b.name(rendered),
			method: m.Method,
		})
	}
	return rn, nil
}

// memberName applies the literal override, then the naming policy.
func (b *builder) memberName(m *shape.Member) string {
	if m.Override != "" {
		return m.Override
	}
	return naming.Apply(b.opts.NamingPolicy, m.Name)
}

func (b *builder) collection(s *shape.Shape, path []string) (node, error) {
	mt := s.Methods
	site := plan.Site{
		Kind:     siteKind(s.Strategy),
		Type:     s.Type,
		PtrRecv:  mt.PtrRecv,
		Len:      mt.Len,
		At:       mt.At,
		Keys:     mt.Keys,
		Get:      mt.Get,
		Iter:     mt.Iter,
		Next:     mt.Next,
		Value:    mt.Value,
		IterType: mt.IterType,
		Path:     errors.JoinPath(path),
	}
	if mt.IterType != nil && !shape.Accessible(mt.IterType) {
		return nil, errors.Accessibility(appendPath(path, "[iter]"), mt.IterType.String())
	}

	seg := "[elem]"
	if s.Kind == shape.KindMap {
		seg = "[value]"
	}
	elem, err := b.build(s.Elem, nil, appendPath(path, seg))
	if err != nil {
		return nil, err
	}
	return &iterNode{elem: elem, site: site}, nil
}

func siteKind(s shape.Strategy) plan.SiteKind {
	switch s {
	case shape.StrategyArray:
		return plan.SiteArray
	case shape.StrategySlice:
		return plan.SiteSlice
	case shape.StrategyList:
		return plan.SiteList
	case shape.StrategyValueIter:
		return plan.SiteValueIter
	case shape.StrategyRefIter:
		return plan.SiteRefIter
	case shape.StrategyBuiltinMap:
		return plan.SiteMap
	}
	return plan.SiteKeyedMap
}

// converter interns c. Converters of comparable dynamic type are
// deduplicated by identity.
func (b *builder) converter(c convert.Converter) int {
	comparable := reflect.TypeOf(c).Comparable()
	if comparable {
		if i, ok := b.convIndex[c]; ok {
			return i
		}
	}
	i := len(b.converters)
	b.converters = append(b.converters, c)
	if comparable {
		b.convIndex[c] = i
	}
	return i
}

func (b *builder) name(text string) int {
	if i, ok := b.nameIndex[text]; ok {
		return i
	}
	i := len(b.names)
	b.names = append(b.names, plan.Name{
		Text:    text,
		Encoded: writer.EncodeName(text, b.opts.EscapeHTML),
	})
	b.nameIndex[text] = i
	return i
}

func appendPath(path []string, seg string) []string {
	return append(path[:len(path):len(path)], seg)
}
