// Package pricing maps equipment capacity and intervention kind onto the
// fixed FCFA tariff ladder.
package pricing

import (
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
)

type tier struct {
	maxCapacity int
	price       int64
}

// Tiers are inclusive upper bounds in ascending order; the first matching
// tier wins and the last tier catches everything above 16 KVA.
var (
	maintenanceTiers = []tier{
		{maxCapacity: 3, price: 15000},
		{maxCapacity: 5, price: 20000},
		{maxCapacity: 8, price: 30000},
		{maxCapacity: 16, price: 35000},
	}
	maintenanceCatchAll int64 = 45000

	installationTiers = []tier{
		{maxCapacity: 3, price: 50000},
		{maxCapacity: 5, price: 75000},
		{maxCapacity: 8, price: 80000},
		{maxCapacity: 16, price: 125000},
	}
	installationCatchAll int64 = 200000
)

// ForKind returns the tariff for the given capacity and intervention kind.
// Repairs are always 0: their price is entered manually by an operator.
// A capacity below 1 also resolves to 0.
func ForKind(capacity int, kind interventiondomain.Kind) int64 {
	if capacity < 1 {
		return 0
	}

	switch kind {
	case interventiondomain.KindMaintenance:
		return lookup(maintenanceTiers, maintenanceCatchAll, capacity)
	case interventiondomain.KindInstallation:
		return lookup(installationTiers, installationCatchAll, capacity)
	}
	return 0
}

func lookup(tiers []tier, catchAll int64, capacity int) int64 {
	for _, t := range tiers {
		if capacity <= t.maxCapacity {
			return t.price
		}
	}
	return catchAll
}
