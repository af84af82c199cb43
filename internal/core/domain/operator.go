package domain

// Operator is an admin allowed to trigger reconciliation and manual refunds.
type Operator struct {
	Name string
}
