package industry

import "testing"

func TestStockLedger_Consume(t *testing.T) {
	l := newStockLedger([]StockEntry{{TypeID: 34, Quantity: 500}})

	if got := l.consume(34, 300); got != 300 {
		t.Errorf("first consume = %d, want 300", got)
	}
	if got := l.consume(34, 300); got != 200 {
		t.Errorf("second consume = %d, want 200 (exhausts stock)", got)
	}
	if got := l.consume(34, 100); got != 0 {
		t.Errorf("consume after exhaustion = %d, want 0", got)
	}
	if got := l.consume(35, 10); got != 0 {
		t.Errorf("consume of unstocked type = %d, want 0", got)
	}
}

func TestStockLedger_DuplicateEntriesAccumulate(t *testing.T) {
	l := newStockLedger([]StockEntry{
		{TypeID: 34, Quantity: 100},
		{TypeID: 34, Quantity: 150},
	})
	if got := l.consume(34, 1000); got != 250 {
		t.Errorf("consume = %d, want 250", got)
	}
}

func TestStockLedger_RemainingStocks(t *testing.T) {
	l := newStockLedger([]StockEntry{
		{TypeID: 34, Quantity: 500},
		{TypeID: 35, Quantity: 200},
	})
	l.consume(34, 500)
	l.consume(35, 50)

	remaining := l.remainingStocks()
	if _, ok := remaining[34]; ok {
		t.Error("fully consumed type 34 should not be reported")
	}
	if got := remaining[35]; got != 150 {
		t.Errorf("remaining[35] = %d, want 150", got)
	}
}

func TestStockLedger_IgnoresNonPositive(t *testing.T) {
	l := newStockLedger([]StockEntry{{TypeID: 34, Quantity: 0}})
	if got := l.consume(34, 10); got != 0 {
		t.Errorf("consume = %d, want 0", got)
	}
	if got := l.consume(34, -5); got != 0 {
		t.Errorf("negative want consumed %d, want 0", got)
	}
}
