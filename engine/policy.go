package engine

import "github.com/wippyai/jsonplan/writer"

// Policy decides whether a chunk ends at a suspend point. converted is the
// number of converter calls already made in the current chunk; it is
// always at least one when a policy is consulted.
type Policy interface {
	ShouldSuspend(w writer.TokenWriter, converted int) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(w writer.TokenWriter, converted int) bool

func (f PolicyFunc) ShouldSuspend(w writer.TokenWriter, converted int) bool {
	return f(w, converted)
}

// Never runs every chunk to completion.
var Never Policy = PolicyFunc(func(writer.TokenWriter, int) bool { return false })

// EveryN suspends once a chunk has made n converter calls. n < 1 is
// treated as 1.
func EveryN(n int) Policy {
	if n < 1 {
		n = 1
	}
	return PolicyFunc(func(_ writer.TokenWriter, converted int) bool {
		return converted >= n
	})
}

// Buffered suspends once the writer holds at least threshold unflushed bytes.
func Buffered(threshold int) Policy {
	return PolicyFunc(func(w writer.TokenWriter, _ int) bool {
		return w.IsCapacityExceeded(threshold)
	})
}

// Any suspends when any of ps does.
func Any(ps ...Policy) Policy {
	return PolicyFunc(func(w writer.TokenWriter, converted int) bool {
		for _, p := range ps {
			if p.ShouldSuspend(w, converted) {
				return true
			}
		}
		return false
	})
}
