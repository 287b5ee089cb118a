package domain

// CartLine is a local, unsynchronized reservation of Qty units of one item.
// Name and Price are snapshots taken when the line was created.
type CartLine struct {
	ItemID ItemID
	Name   string
	Price  float64
	Qty    int
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Qty)
}
