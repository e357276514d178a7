package diag

import "testing"

func TestBagLimitAndCounts(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewWarning(WarnUnreachableBlock, AtBlock("f", "x"), "w")) {
		t.Fatal("first add rejected")
	}
	if !b.Add(NewError(RefUnknownBlock, AtBlock("f", "y"), "e")) {
		t.Fatal("second add rejected")
	}
	if b.Add(NewError(RefUnknownBlock, AtBlock("f", "z"), "e")) {
		t.Fatal("add past the limit accepted")
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Error("HasErrors/HasWarnings mismatch")
	}
	if b.Count(SevError) != 1 || b.Count(SevWarning) != 1 {
		t.Errorf("counts = %d errors, %d warnings", b.Count(SevError), b.Count(SevWarning))
	}
	if NewBag(-1).Cap() != 0 || NewBag(1<<20).Cap() != 65535 {
		t.Error("limit was not clamped")
	}
}

func TestBagSortDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewWarning(WarnFallsOffEnd, AtBlock("g", "end"), "falls"))
	b.Add(NewError(RefUnknownBlock, AtInstr("f", "entry", 1), "later"))
	b.Add(NewError(RefUnknownBlock, AtInstr("f", "entry", 0), "first"))
	b.Add(NewError(RefUnknownBlock, AtInstr("f", "entry", 0), "dup"))
	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Message != "first" || items[1].Message != "later" || items[2].Message != "falls" {
		t.Errorf("order = %q, %q, %q", items[0].Message, items[1].Message, items[2].Message)
	}

	b.Filter(func(d Diagnostic) bool { return d.Severity == SevError })
	if b.Len() != 2 {
		t.Errorf("Filter kept %d", b.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		ReportError(r, StrPhiArity, AtInstr("f", "b", 0), "phi").Emit()
	}
	ReportWarning(r, WarnNonNFCName, AtFunction("f"), "nfc").WithNote(AtModule(), "n").Emit()
	if bag.Len() != 2 {
		t.Fatalf("bag has %d diagnostics, want 2", bag.Len())
	}
	if len(bag.Items()[1].Notes) != 1 {
		t.Error("note lost")
	}
}
