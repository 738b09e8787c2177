package plan

import (
	"fmt"
	"strings"
)

// Disassemble renders the plan one step per line, for debugging.
func Disassemble(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; plan %s: %d steps, depth %d, %d sites, %d names, %d converters\n",
		p.Root, len(p.Steps), p.Depth, len(p.Sites), len(p.Names), len(p.Converters))
	for pc := range p.Steps {
		b.WriteString(FormatStep(p, pc))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatStep renders the step at pc.
func FormatStep(p *Plan, pc int) string {
	s := p.Steps[pc]
	head := fmt.Sprintf("%04d %-12s", pc, s.Op)

	switch s.Op {
	case OpName:
		return fmt.Sprintf("%s %q", head, p.Names[s.Arg].Text)
	case OpKeyName:
		return fmt.Sprintf("%s site=%d", head, s.Arg)
	case OpGuard:
		return fmt.Sprintf("%s slot=%d else=%04d", head, s.Slot, s.Jump)
	case OpDeref:
		return fmt.Sprintf("%s slot=%d", head, s.Slot)
	case OpField:
		return fmt.Sprintf("%s slot=%d -> %d index=%v", head, s.Slot, s.Dst, s.Index)
	case OpMethod:
		return fmt.Sprintf("%s slot=%d -> %d method=%d", head, s.Slot, s.Dst, s.Arg)
	case OpConvert:
		return fmt.Sprintf("%s slot=%d conv=%d (%T)", head, s.Slot, s.Arg, p.Converters[s.Arg])
	case OpIterInit:
		site := p.Sites[s.Arg]
		return fmt.Sprintf("%s slot=%d site=%d %s %s", head, s.Slot, s.Arg, site.Kind, site.Type)
	case OpIterNext:
		return fmt.Sprintf("%s site=%d -> %d done=%04d", head, s.Arg, s.Dst, s.Jump)
	case OpJump:
		return fmt.Sprintf("%s %04d", head, s.Jump)
	}
	return strings.TrimRight(head, " ")
}
