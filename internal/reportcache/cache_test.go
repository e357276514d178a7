package reportcache_test

import (
	"testing"

	"irkit/internal/diag"
	"irkit/internal/ir"
	"irkit/internal/irbuild"
	"irkit/internal/irvalid"
	"irkit/internal/reportcache"
	"irkit/internal/samples"
)

// TestValidateCaches checks that a second validation is served from disk
// with identical diagnostics.
func TestValidateCaches(t *testing.T) {
	c, err := reportcache.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m, err := samples.Build("broken")
	if err != nil {
		t.Fatal(err)
	}
	opts := irvalid.Options{MaxDiagnostics: 50}

	first, hit, err := c.Validate(m, opts)
	if err != nil || hit {
		t.Fatalf("first Validate: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.Validate(m, opts)
	if err != nil || !hit {
		t.Fatalf("second Validate: hit=%v err=%v", hit, err)
	}
	want := diag.FormatGoldenDiagnostics(first.Items(), true)
	if got := diag.FormatGoldenDiagnostics(second.Items(), true); got != want {
		t.Errorf("cached report differs:\n%s\nwant\n%s", got, want)
	}
	if !second.HasErrors() {
		t.Error("cached report lost its errors")
	}
}

// TestKeyDependsOnModuleAndLimit checks key derivation.
func TestKeyDependsOnModuleAndLimit(t *testing.T) {
	add, err := samples.Build("add")
	if err != nil {
		t.Fatal(err)
	}
	again, err := samples.Build("add")
	if err != nil {
		t.Fatal(err)
	}
	loop, err := samples.Build("loop")
	if err != nil {
		t.Fatal(err)
	}
	if reportcache.Key(add, 10) != reportcache.Key(again, 10) {
		t.Error("equal modules got different keys")
	}
	if reportcache.Key(add, 10) == reportcache.Key(loop, 10) {
		t.Error("different modules share a key")
	}
	if reportcache.Key(add, 10) == reportcache.Key(add, 20) {
		t.Error("limit does not affect the key")
	}
}

// TestGetMissAndDrop checks misses and DropAll.
func TestGetMissAndDrop(t *testing.T) {
	c, err := reportcache.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var key reportcache.Digest
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("Get(empty) = ok=%v err=%v", ok, err)
	}
	bag := diag.NewBag(1)
	bag.Add(diag.NewWarning(diag.WarnUnreachableBlock, diag.AtBlock("f", "dead"), "unreachable"))
	if err := c.Put(key, "m", bag); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); !ok {
		t.Fatal("Put entry not found")
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Error("entry survived DropAll")
	}
}

func jumpModule(t *testing.T, cj *ir.ConditionalJump, extra ...ir.Instr) *ir.Module {
	t.Helper()
	g := ir.NewControlFlowGraph("f")
	g.AddBasicBlock(ir.NewBasicBlock("entry", append(extra, cj)...))
	g.AddBasicBlock(ir.NewBasicBlock("mid", ir.NewGoto("exit")))
	g.AddBasicBlock(ir.NewBasicBlock("exit", ir.NewReturn(nil)))
	irbuild.LinkEdges(g)
	fields := []*ir.Field{ir.NewField("c", ir.I1), ir.NewField("a", ir.I32)}
	fn, err := ir.NewFunction(ir.Void, "f", 2, fields, g)
	if err != nil {
		t.Fatal(err)
	}
	m := ir.NewModule("m")
	m.PushFunction(fn)
	return m
}

// TestKeySeesEveryField checks that modules differing only in fields the
// listing does not show get different keys, and that the cache never
// answers for one with the report of the other.
func TestKeySeesEveryField(t *testing.T) {
	c := ir.NewVirtualRegister("c")
	a := ir.NewVirtualRegister("a")
	jump := func(op2 ir.Operand) *ir.ConditionalJump {
		return &ir.ConditionalJump{Type: ir.I1, Cond: ir.CondIfTrue, Operand1: c, Operand2: op2, Target: "exit"}
	}
	phi := func(ops ...ir.Operand) ir.Instr {
		return ir.NewSetVirtualRegister(&ir.Phi{Type: ir.I32, Labels: []string{"entry", "mid"}, Operands: ops}, ir.NewVirtualRegister("p"))
	}

	tests := []struct {
		name      string
		good, bad func(t *testing.T) *ir.Module
	}{
		{
			name: "stray jump operand",
			good: func(t *testing.T) *ir.Module { return jumpModule(t, jump(nil)) },
			bad:  func(t *testing.T) *ir.Module { return jumpModule(t, jump(c)) },
		},
		{
			name: "extra invoke argument type",
			good: func(t *testing.T) *ir.Module {
				return jumpModule(t, jump(nil), &ir.Invoke{ReturnType: ir.Void, Address: a, ArgumentTypes: []ir.Type{ir.I32}, Arguments: []ir.Operand{a}})
			},
			bad: func(t *testing.T) *ir.Module {
				return jumpModule(t, jump(nil), &ir.Invoke{ReturnType: ir.Void, Address: a, ArgumentTypes: []ir.Type{ir.I32, ir.I32}, Arguments: []ir.Operand{a}})
			},
		},
		{
			name: "extra asm name",
			good: func(t *testing.T) *ir.Module {
				return jumpModule(t, jump(nil), &ir.Asm{Code: "nop", Types: []ir.Type{ir.I32}, Resources: []ir.Operand{a}, Names: []string{"x"}})
			},
			bad: func(t *testing.T) *ir.Module {
				return jumpModule(t, jump(nil), &ir.Asm{Code: "nop", Types: []ir.Type{ir.I32}, Resources: []ir.Operand{a}, Names: []string{"x", "y"}})
			},
		},
		{
			name: "extra phi operand",
			good: func(t *testing.T) *ir.Module {
				m := jumpModule(t, jump(nil))
				f, _ := m.Function("f")
				exit, _ := f.ControlFlowGraph.Lookup("exit")
				b := f.ControlFlowGraph.Block(exit)
				b.Instructions = append([]ir.Instr{phi(a, a)}, b.Instructions...)
				return m
			},
			bad: func(t *testing.T) *ir.Module {
				m := jumpModule(t, jump(nil))
				f, _ := m.Function("f")
				exit, _ := f.ControlFlowGraph.Lookup("exit")
				b := f.ControlFlowGraph.Block(exit)
				b.Instructions = append([]ir.Instr{phi(a, a, a)}, b.Instructions...)
				return m
			},
		},
	}

	opts := irvalid.Options{MaxDiagnostics: 50}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good, bad := tt.good(t), tt.bad(t)
			if reportcache.Key(good, 50) == reportcache.Key(bad, 50) {
				t.Fatal("modules share a key")
			}

			cache, err := reportcache.Open(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			if _, _, err := cache.Validate(good, opts); err != nil {
				t.Fatal(err)
			}
			got, hit, err := cache.Validate(bad, opts)
			if err != nil {
				t.Fatal(err)
			}
			if hit {
				t.Error("cache answered for a different module")
			}
			want := irvalid.ValidateWith(bad, opts)
			if !want.HasErrors() {
				t.Fatalf("malformed module validated clean")
			}
			if g, w := diag.FormatGoldenDiagnostics(got.Items(), false), diag.FormatGoldenDiagnostics(want.Items(), false); g != w {
				t.Errorf("report =\n%s\nwant\n%s", g, w)
			}
		})
	}
}

// TestKeyDistinguishesConstantValueTypes checks that 4 and 4.0 in the pool
// give different keys even though both render as 4.
func TestKeyDistinguishesConstantValueTypes(t *testing.T) {
	intPool := ir.NewModule("m")
	intPool.ConstantPool.Push(ir.NewConstantPoolEntry(ir.Double, int64(4)))
	floatPool := ir.NewModule("m")
	floatPool.ConstantPool.Push(ir.NewConstantPoolEntry(ir.Double, float64(4)))
	if reportcache.Key(intPool, 10) == reportcache.Key(floatPool, 10) {
		t.Error("int and float constants share a key")
	}
}
