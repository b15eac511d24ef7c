package isa

import "testing"

func TestReversible(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
		want bool
	}{
		{"RXOR", NewRXOR(1, 2), true},
		{"RADD", NewRADD(1, 2), true},
		{"RSWAP", NewRSWAP(1, 2), true},
		{"BEQ", NewBEQ(1, 2, "target"), true},
		{"ADD", NewADDImm(1, 2, 3), false},
		{"SUB", NewSUBReg(1, 2, 3), false},
		{"LOAD", NewLOAD(1, 2, nil), false},
		{"STORE", NewSTORE(1, 2, nil), false},
		{"HALT", NewHALT(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Reversible(); got != tc.want {
				t.Errorf("%s: Reversible() = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestOpCodeStringRoundTrip(t *testing.T) {
	for _, name := range []string{"RXOR", "RADD", "RSWAP", "BEQ", "ADD", "SUB", "LOAD", "STORE", "HALT"} {
		op, ok := ParseOpCode(name)
		if !ok {
			t.Fatalf("ParseOpCode(%q): not found", name)
		}
		if got := op.String(); got != name {
			t.Errorf("ParseOpCode(%q).String() = %q, want %q", name, got, name)
		}
	}
	if _, ok := ParseOpCode("NOPE"); ok {
		t.Errorf("ParseOpCode(%q): expected ok=false", "NOPE")
	}
}

func TestUnpopulatedSlotsAreAbsent(t *testing.T) {
	i := NewHALT()
	if i.Rd != nil || i.Rs1 != nil || i.Rs2 != nil || i.Imm != nil || i.Label != nil {
		t.Errorf("HALT instruction has a populated slot: %+v", i)
	}

	add := NewADDImm(1, 2, 5)
	if add.Rs2 != nil {
		t.Errorf("NewADDImm populated Rs2, want nil: %+v", add)
	}
	if add.Imm == nil || *add.Imm != 5 {
		t.Errorf("NewADDImm.Imm = %v, want 5", add.Imm)
	}
}

func TestInstructionString(t *testing.T) {
	i := NewBEQ(1, 2, "done")
	want := "BEQ r1 r2 done"
	if got := i.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
