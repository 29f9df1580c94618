package layout

import (
	"errors"
	"fmt"
	"testing"
)

func TestPathString(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{Path{}, ""},
		{Path{}.Idx(2), "[2]"},
		{Path{}.Fld("c").Fld("a"), ".c.a"},
		{Path{}.Fld("b").Idx(1), ".b[1]"},
		{Path{}.Disc(), "#"},
		{Path{}.Payload("Data"), "#Data"},
		{Path{}.PayloadByValue(3), "#(3)"},
		{Path{}.Fld("b").Dyn(Reg(7)), ".b[[r7]]"},
	}
	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSlotString(t *testing.T) {
	tests := []struct {
		slot Slot
		want string
	}{
		{Reg(3), "r3"},
		{Lit(5), "l5"},
		{Empty(), "()"},
	}
	for _, tt := range tests {
		if got := tt.slot.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
	if !Reg(3).IsReg() || Reg(3).IsLit() || Reg(3).IsEmpty() {
		t.Fatal("Reg predicates wrong")
	}
	if !Lit(5).IsLit() || !Empty().IsEmpty() {
		t.Fatal("Lit/Empty predicates wrong")
	}
}

func TestPrefixOps(t *testing.T) {
	full := Path{}.Fld("d").Idx(2).Fld("b")
	prefix := Path{}.Fld("d").Idx(2)

	if !prefix.IsPrefixOf(full) {
		t.Fatalf("%s should prefix %s", prefix, full)
	}
	if full.IsPrefixOf(prefix) {
		t.Fatalf("%s should not prefix %s", full, prefix)
	}
	if !prefix.IsPrefixOf(prefix) {
		t.Fatal("a path should prefix itself")
	}

	rest, err := full.StripPrefix(prefix)
	if err != nil {
		t.Fatalf("StripPrefix: %v", err)
	}
	if rest.String() != ".b" {
		t.Fatalf("rest = %s, want .b", rest)
	}
	if got := prefix.Join(rest); !got.Equal(full) {
		t.Fatalf("Join round trip = %s, want %s", got, full)
	}

	other := Path{}.Fld("c")
	if _, err := full.StripPrefix(other); err == nil {
		t.Fatal("StripPrefix with a non-prefix succeeded")
	}
}

func TestDynamicSlots(t *testing.T) {
	p := Path{}.Fld("d").Dyn(Reg(0)).Fld("b").Dyn(Reg(1))
	if !p.AnyDynamic() {
		t.Fatal("AnyDynamic = false")
	}
	slots := p.DynamicSlots()
	if len(slots) != 2 || slots[0] != Reg(0) || slots[1] != Reg(1) {
		t.Fatalf("DynamicSlots = %v", slots)
	}
	if (Path{}.Fld("a")).AnyDynamic() {
		t.Fatal("concrete path reported dynamic")
	}
}

func TestRemapSlots(t *testing.T) {
	p := Path{}.Fld("d").Dyn(Reg(0)).Idx(1).Dyn(Reg(1))
	mapped := p.RemapSlots(func(s Slot) Slot { return Reg(s.ID + 10) })
	slots := mapped.DynamicSlots()
	if len(slots) != 2 || slots[0] != Reg(10) || slots[1] != Reg(11) {
		t.Fatalf("remapped slots = %v", slots)
	}
	// the original is untouched
	if got := p.DynamicSlots(); got[0] != Reg(0) {
		t.Fatalf("source path mutated: %v", got)
	}
}

func TestResolveDynamic(t *testing.T) {
	p := Path{}.Fld("d").Dyn(Reg(0)).Fld("b").Dyn(Reg(1))
	values := map[Slot]int{Reg(0): 2, Reg(1): 1}
	concrete, err := p.ResolveDynamic(func(s Slot) (int, error) {
		v, ok := values[s]
		if !ok {
			return 0, fmt.Errorf("no value for %s", s)
		}
		return v, nil
	})
	if err != nil {
		t.Fatalf("ResolveDynamic: %v", err)
	}
	if concrete.AnyDynamic() {
		t.Fatalf("still dynamic: %s", concrete)
	}
	if concrete.String() != ".d[2].b[1]" {
		t.Fatalf("resolved = %s, want .d[2].b[1]", concrete)
	}

	_, err = p.ResolveDynamic(func(Slot) (int, error) {
		return 0, errors.New("register unavailable")
	})
	if err == nil {
		t.Fatal("lookup failure was swallowed")
	}
}
