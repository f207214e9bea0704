package lattice_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wpago/wpago/internal/fixture"
	"github.com/wpago/wpago/lattice"
)

// snapshot flattens a CPFact into a plain map go-cmp can diff structurally;
// CPFact itself carries an unexported orderedmap field cmp can't see into.
func snapshot(f *lattice.CPFact) map[string]string {
	out := make(map[string]string)
	for _, v := range f.Vars() {
		out[v.Name()] = f.Get(v).String()
	}
	return out
}

func TestMeetIntoTable(t *testing.T) {
	x := fixture.NewIntVar("x")
	y := fixture.NewIntVar("y")

	tests := []struct {
		name     string
		dst, src map[string]lattice.Value
		want     map[string]string
	}{
		{
			name: "const meets matching const stays const",
			dst:  map[string]lattice.Value{"x": lattice.MakeConstant(1)},
			src:  map[string]lattice.Value{"x": lattice.MakeConstant(1)},
			want: map[string]string{"x": "1"},
		},
		{
			name: "const meets differing const widens to NAC",
			dst:  map[string]lattice.Value{"x": lattice.MakeConstant(1)},
			src:  map[string]lattice.Value{"x": lattice.MakeConstant(2)},
			want: map[string]string{"x": "NAC"},
		},
		{
			name: "undef meets const yields the const",
			dst:  map[string]lattice.Value{},
			src:  map[string]lattice.Value{"y": lattice.MakeConstant(7)},
			want: map[string]string{"y": "7"},
		},
		{
			name: "disjoint variables both survive",
			dst:  map[string]lattice.Value{"x": lattice.MakeConstant(3)},
			src:  map[string]lattice.Value{"y": lattice.MakeConstant(4)},
			want: map[string]string{"x": "3", "y": "4"},
		},
	}

	vars := map[string]*fixture.Var{"x": x, "y": y}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dst := lattice.NewCPFact()
			for name, val := range tc.dst {
				dst.Set(vars[name], val)
			}
			src := lattice.NewCPFact()
			for name, val := range tc.src {
				src.Set(vars[name], val)
			}

			lattice.MeetInto(dst, src)

			if diff := cmp.Diff(tc.want, snapshot(dst)); diff != "" {
				t.Errorf("CPFact mismatch after MeetInto (-want +got):\n%s", diff)
			}
		})
	}
}
