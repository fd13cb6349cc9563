// Package exhibitor turns exhibitor blocks of a listing page into contact records.
package exhibitor

// Record is one exhibitor extracted from a listing block. Every field except ID
// may be nil when the block does not carry it.
type Record struct {
	ID          int64
	Name        *string
	Description *string
	Country     *string
	Website     *string
	Email       *string
	Phone       *string
}

// Columns lists the persisted fields in table order, excluding the id.
var Columns = []string{"name", "description", "country", "website", "email", "phone"}

// Values returns the persisted fields in Columns order. Nil fields become untyped
// nil so SQL drivers write NULL.
func (r Record) Values() []any {
	return []any{
		nullable(r.Name),
		nullable(r.Description),
		nullable(r.Country),
		nullable(r.Website),
		nullable(r.Email),
		nullable(r.Phone),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func ptr(s string) *string {
	return &s
}
