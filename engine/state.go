package engine

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/naming"
	"github.com/wippyai/jsonplan/plan"
	"github.com/wippyai/jsonplan/writer"
)

type StepStatus int

const (
	StepContinue StepStatus = iota // paused at a suspend point, expects resume
	StepDone                       // execution complete
)

func (s StepStatus) String() string {
	switch s {
	case StepContinue:
		return "continue"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// State is the execution state of one serialization. It is not safe for
// concurrent use; the plan it runs is.
type State struct {
	plan    *plan.Plan
	err     error
	slots   []reflect.Value
	cursors []cursor
	pc      int

	converted int
	chunks    int
	started   bool
	done      bool
}

// NewState allocates execution state sized for p.
func NewState(p *plan.Plan) *State {
	return &State{
		plan:    p,
		slots:   make([]reflect.Value, p.Depth),
		cursors: make([]cursor, len(p.Sites)),
	}
}

// Plan returns the plan the state executes.
func (s *State) Plan() *plan.Plan { return s.plan }

// PC returns the index of the next step to run.
func (s *State) PC() int { return s.pc }

// Done reports whether the final step has run.
func (s *State) Done() bool { return s.done }

// Converted returns the number of converter calls made so far.
func (s *State) Converted() int { return s.converted }

// Chunks returns the number of Step calls that did work.
func (s *State) Chunks() int { return s.chunks }

// Reset rewinds the state for another serialization with the same plan.
func (s *State) Reset() {
	clear(s.slots)
	for i := range s.cursors {
		s.cursors[i].reset()
	}
	s.pc = 0
	s.err = nil
	s.converted = 0
	s.chunks = 0
	s.started = false
	s.done = false
}

// Run executes p against v to completion.
func Run(p *plan.Plan, w writer.TokenWriter, v reflect.Value) error {
	s := NewState(p)
	if err := s.start(v); err != nil {
		return err
	}
	_, err := s.exec(w, nil)
	return err
}

// Step executes one chunk. v is read when execution starts; later calls
// continue with the values already loaded. A nil policy runs to completion.
func (s *State) Step(w writer.TokenWriter, v reflect.Value, policy Policy) (StepStatus, error) {
	if s.err != nil {
		return StepDone, s.err
	}
	if s.done {
		return StepDone, errors.New(errors.PhaseExecute, errors.KindInvalidState).
			Detail("execution already complete; call Reset").
			Build()
	}
	if !s.started {
		if err := s.start(v); err != nil {
			return StepDone, err
		}
	}
	s.chunks++
	status, err := s.exec(w, policy)
	if err != nil {
		s.err = err
	}
	return status, err
}

func (s *State) start(v reflect.Value) error {
	if !v.IsValid() || v.Type() != s.plan.Root {
		got := "invalid value"
		if v.IsValid() {
			got = v.Type().String()
		}
		return errors.New(errors.PhaseExecute, errors.KindInvalidInput).
			GoType(got).
			Detail("plan serializes %s", s.plan.Root).
			Build()
	}
	s.slots[0] = v
	s.started = true
	return nil
}

// exec runs steps from pc. Suspension is only considered before a
// converter call and only after this chunk has made one, so every chunk
// makes progress.
func (s *State) exec(w writer.TokenWriter, policy Policy) (StepStatus, error) {
	p := s.plan
	steps := p.Steps
	converted := 0

	for {
		st := &steps[s.pc]
		switch st.Op {
		case plan.OpReturn:
			s.done = true
			clear(s.slots)
			return StepDone, nil

		case plan.OpStartObject:
			w.WriteStartObject()
		case plan.OpEndObject:
			w.WriteEndObject()
		case plan.OpStartArray:
			w.WriteStartArray()
		case plan.OpEndArray:
			w.WriteEndArray()

		case plan.OpName:
			w.WriteEncodedName(p.Names[st.Arg].Encoded)
		case plan.OpKeyName:
			w.WritePropertyName(naming.Apply(p.Captured.MapKeyPolicy, s.cursors[st.Arg].key))

		case plan.OpGuard:
			if isNil(s.slots[st.Slot]) {
				w.WriteNull()
				s.pc = st.Jump
				continue
			}
		case plan.OpDeref:
			s.slots[st.Slot] = s.slots[st.Slot].Elem()

		case plan.OpField:
			src := s.slots[st.Slot]
			if len(st.Index) == 1 {
				s.slots[st.Dst] = src.Field(st.Index[0])
			} else {
				s.slots[st.Dst] = src.FieldByIndex(st.Index)
			}
		case plan.OpMethod:
			s.slots[st.Dst] = s.slots[st.Slot].Method(st.Arg).Call(nil)[0]

		case plan.OpConvert:
			if converted > 0 && policy != nil && policy.ShouldSuspend(w, converted) {
				if debug.Load() {
					debugf("suspend at pc=%d after %d conversions, %d bytes buffered", s.pc, converted, w.Buffered())
				}
				return StepContinue, nil
			}
			if err := p.Converters[st.Arg].Write(w, s.slots[st.Slot], p.Options); err != nil {
				Logger().Debug("converter failed",
					zap.Int("pc", s.pc),
					zap.Stringer("type", s.slots[st.Slot].Type()),
					zap.Error(err))
				return StepDone, err
			}
			converted++
			s.converted++

		case plan.OpIterInit:
			s.cursors[st.Arg].init(&p.Sites[st.Arg], s.slots[st.Slot])
		case plan.OpIterNext:
			v, ok := s.cursors[st.Arg].next(&p.Sites[st.Arg])
			if !ok {
				s.pc = st.Jump
				continue
			}
			s.slots[st.Dst] = v

		case plan.OpJump:
			s.pc = st.Jump
			continue
		}
		s.pc++
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}
