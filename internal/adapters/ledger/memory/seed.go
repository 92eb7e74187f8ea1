package memory

import (
	"fmt"

	"github.com/bnema/shipscan/internal/domain"
)

// SeedDemo registers a handful of shipments with BOX-style item labels
// so the demo mode works out of the box with the default grammar.
func SeedDemo(l *Ledger) {
	shipments := []struct {
		ref   domain.ShipmentReference
		items int
	}{
		{ref: domain.ShipmentReference{ID: "DEMO-1", Origin: "Singapore", BatchID: "B-441", ProductName: "Tablet Pro"}, items: 5},
		{ref: domain.ShipmentReference{ID: "DEMO-2", Origin: "Hong Kong", BatchID: "B-442", ProductName: "Wireless Earbuds"}, items: 3},
		{ref: domain.ShipmentReference{ID: "DEMO-3", Origin: "Jakarta", BatchID: "B-443", ProductName: "Power Bank"}, items: 8},
	}

	box := 0
	for _, s := range shipments {
		itemIDs := make([]string, 0, s.items)
		for i := 0; i < s.items; i++ {
			box++
			itemIDs = append(itemIDs, fmt.Sprintf("BOX-%04d", box))
		}
		l.RegisterShipment(s.ref, itemIDs...)
	}
}
