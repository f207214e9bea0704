// Package dataflow implements the generic intra-procedural forward fixpoint
// solver and the inter-procedural ICFG solver that any flow-insensitive-
// per-node dataflow analysis can be instantiated on top of. Package
// constprop supplies the concrete analysis (constant propagation); package
// interproc supplies the alias-aware inter-procedural extension.
package dataflow

import "github.com/wpago/wpago/ir"

// Analysis is the capability set a generic dataflow solver needs: it is one
// routine parameterized by these four operations plus a direction flag.
type Analysis[F any] interface {
	NewBoundaryFact(cfg ir.CFG) *F
	NewInitialFact() *F
	// MeetInto computes dst := dst ⊓ src and returns whether dst changed.
	MeetInto(dst, src *F) bool
	// TransferNode runs the node's transfer function, writing into out, and
	// reports whether out changed from its previous value.
	TransferNode(stmt ir.Stmt, in, out *F) bool
	IsForward() bool
}

// Result holds the per-statement IN/OUT facts a Solve computed.
type Result[F any] struct {
	cfg  ir.CFG
	in   map[ir.Stmt]*F
	out  map[ir.Stmt]*F
}

func (r *Result[F]) InFact(s ir.Stmt) *F  { return r.in[s] }
func (r *Result[F]) OutFact(s ir.Stmt) *F { return r.out[s] }

// Solve runs analysis a to fixpoint over cfg. The worklist discipline is a
// LIFO stack; tests must not depend on visitation order, only on the final
// fixpoint, which monotone meet/transfer guarantees regardless of order.
func Solve[F any](a Analysis[F], cfg ir.CFG) *Result[F] {
	if !a.IsForward() {
		panic("dataflow: only forward analyses are supported")
	}

	stmts := cfg.Stmts()
	in := make(map[ir.Stmt]*F, len(stmts))
	out := make(map[ir.Stmt]*F, len(stmts))
	entry := cfg.Entry()

	for _, s := range stmts {
		in[s] = a.NewInitialFact()
		if s == entry {
			in[s] = a.NewBoundaryFact(cfg)
			out[s] = a.NewBoundaryFact(cfg)
		} else {
			out[s] = a.NewInitialFact()
		}
	}

	worklist := newStack(stmts)
	onList := make(map[ir.Stmt]bool, len(stmts))
	for _, s := range stmts {
		onList[s] = true
	}

	for !worklist.empty() {
		s := worklist.pop()
		onList[s] = false

		if s != entry {
			inFact := a.NewInitialFact()
			for _, p := range cfg.PredsOf(s) {
				a.MeetInto(inFact, out[p])
			}
			in[s] = inFact
		}

		changed := a.TransferNode(s, in[s], out[s])
		if changed {
			for _, succ := range cfg.SuccsOf(s) {
				if !onList[succ] {
					onList[succ] = true
					worklist.push(succ)
				}
			}
		}
	}

	return &Result[F]{cfg: cfg, in: in, out: out}
}

type stack struct{ items []ir.Stmt }

func newStack(init []ir.Stmt) *stack {
	items := make([]ir.Stmt, len(init))
	copy(items, init)
	return &stack{items: items}
}

func (s *stack) empty() bool { return len(s.items) == 0 }

func (s *stack) push(x ir.Stmt) { s.items = append(s.items, x) }

func (s *stack) pop() ir.Stmt {
	n := len(s.items) - 1
	x := s.items[n]
	s.items = s.items[:n]
	return x
}
