package industry

// stockLedger tracks on-hand stock across one run. Consumption happens in
// finalization order, which is deterministic for identical inputs, so the
// same project always yields identical stock figures.
type stockLedger struct {
	initial   map[int32]int64
	remaining map[int32]int64
}

func newStockLedger(stocks []StockEntry) *stockLedger {
	l := &stockLedger{
		initial:   make(map[int32]int64, len(stocks)),
		remaining: make(map[int32]int64, len(stocks)),
	}
	// Stocks are a multiset; duplicate entries accumulate.
	for _, s := range stocks {
		if s.Quantity <= 0 {
			continue
		}
		l.initial[s.TypeID] += s.Quantity
		l.remaining[s.TypeID] += s.Quantity
	}
	return l
}

// consume takes up to want units of the given type from stock and returns
// how many were actually taken.
func (l *stockLedger) consume(typeID int32, want int64) int64 {
	if want <= 0 {
		return 0
	}
	have := l.remaining[typeID]
	if have <= 0 {
		return 0
	}
	taken := want
	if have < taken {
		taken = have
	}
	l.remaining[typeID] = have - taken
	return taken
}

// leftover returns the unconsumed stock of a type.
func (l *stockLedger) leftover(typeID int32) int64 {
	return l.remaining[typeID]
}

// remainingStocks returns the leftover stock per type, omitting types
// that were fully consumed.
func (l *stockLedger) remainingStocks() map[int32]int64 {
	out := make(map[int32]int64)
	for typeID, qty := range l.remaining {
		if qty > 0 {
			out[typeID] = qty
		}
	}
	return out
}
