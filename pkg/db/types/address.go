package types

// Address is the shipping destination captured at checkout. Persisted as a
// JSON column on orders.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}
