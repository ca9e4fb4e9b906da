package lot

// SaleSummary is the projection of a sale the coordinator needs: whether it
// is void, whether the contract is signed, and its processable/completed
// standing. The sales package maps its aggregates into this shape so the
// lot package does not depend on it.
type SaleSummary struct {
	Void        bool
	Signed      bool
	Processable bool
	Completed   bool
}

// DeriveAvailability recomputes a lot's availability from the set of
// non-void sales referencing it:
//
//	sold      - some non-void sale is signed and processable or completed
//	reserved  - some non-void sale is processable (signature not required)
//	available - otherwise, including when only void sales remain
//
// Pure function; the caller runs it under the lot row lock after every sale
// mutation, including deletions.
func DeriveAvailability(sales []SaleSummary) Availability {
	reserved := false
	for _, s := range sales {
		if s.Void {
			continue
		}
		if s.Signed && (s.Processable || s.Completed) {
			return AvailabilitySold
		}
		if s.Processable {
			reserved = true
		}
	}
	if reserved {
		return AvailabilityReserved
	}
	return AvailabilityAvailable
}
