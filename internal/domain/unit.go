package domain

// Unit is an organizational division that owns tickets and employees.
// Units are reference data and rarely change after creation.
type Unit struct {
	ID   string
	Name string
	Code string
}
