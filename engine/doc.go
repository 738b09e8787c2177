// Package engine executes compiled plans.
//
// Execution is an explicit state machine. A State owns the slot arena,
// the cursor table and the progress counter for one in-flight
// serialization; the Plan it runs is shared and never modified.
//
// Run executes a plan to completion. Step executes it in chunks: it runs
// until the Policy asks for a pause at a suspend point (before a
// converter call) and returns StepContinue, leaving the State positioned
// so the next Step resumes exactly there:
//
//	st := engine.NewState(p)
//	for {
//		status, err := st.Step(w, v, engine.Buffered(16<<10))
//		if err != nil {
//			return err
//		}
//		if err := w.Flush(); err != nil {
//			return err
//		}
//		if status == engine.StepDone {
//			break
//		}
//	}
//
// Chunked and run-to-completion execution write identical bytes.
package engine
