package compiler

import "github.com/wippyai/jsonplan/plan"

// emitter linearizes a node tree. Slot depth d holds the value a node
// writes; record members and collection elements run at d+1.
type emitter struct {
	steps []plan.Step
	sites []plan.Site
	depth int
}

func emit(root node, b *builder) *plan.Plan {
	e := &emitter{}
	e.node(root, 0)
	e.add(plan.Step{Op: plan.OpReturn})

	return &plan.Plan{
		Steps:      e.steps,
		Names:      b.names,
		Converters: b.converters,
		Sites:      e.sites,
		Depth:      e.depth + 1,
	}
}

func (e *emitter) add(s plan.Step) int {
	e.steps = append(e.steps, s)
	return len(e.steps) - 1
}

func (e *emitter) node(n node, d int) {
	if d > e.depth {
		e.depth = d
	}

	switch n := n.(type) {
	case *guardNode:
		at := e.add(plan.Step{Op: plan.OpGuard, Slot: d})
		if n.deref {
			e.add(plan.Step{Op: plan.OpDeref, Slot: d})
		}
		e.node(n.child, d)
		e.steps[at].Jump = len(e.steps)

	case *convNode:
		e.add(plan.Step{Op: plan.OpConvert, Slot: d, Arg: n.conv})

	case *recordNode:
		e.add(plan.Step{Op: plan.OpStartObject})
		for _, m := range n.members {
			e.add(plan.Step{Op: plan.OpName, Arg: m.name})
			if m.method >= 0 {
				e.add(plan.Step{Op: plan.OpMethod, Slot: d, Dst: d + 1, Arg: m.method})
			} else {
				e.add(plan.Step{Op: plan.OpField, Slot: d, Dst: d + 1, Index: m.index})
			}
			e.node(m.child, d+1)
		}
		e.add(plan.Step{Op: plan.OpEndObject})

	case *iterNode:
		isMap := n.site.Kind.IsMap()
		if isMap {
			e.add(plan.Step{Op: plan.OpStartObject})
		} else {
			e.add(plan.Step{Op: plan.OpStartArray})
		}

		site := len(e.sites)
		e.sites = append(e.sites, n.site)
		e.add(plan.Step{Op: plan.OpIterInit, Slot: d, Arg: site})

		loop := len(e.steps)
		next := e.add(plan.Step{Op: plan.OpIterNext, Arg: site, Dst: d + 1})
		if isMap {
			e.add(plan.Step{Op: plan.OpKeyName, Arg: site})
		}
		e.node(n.elem, d+1)
		e.add(plan.Step{Op: plan.OpJump, Jump: loop})
		e.steps[next].Jump = len(e.steps)

		if isMap {
			e.add(plan.Step{Op: plan.OpEndObject})
		} else {
			e.add(plan.Step{Op: plan.OpEndArray})
		}
	}
}
