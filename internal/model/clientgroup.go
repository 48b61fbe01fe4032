package model

// ClientGroup represents a client group from the database.
// Client groups are maintained by external CRUD surfaces and are read-only
// from the report engine's perspective.
type ClientGroup struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Advisor string `json:"advisor"`
	Status  string `json:"status"`
}
