package model

import "time"

// DateKeyFormat is the canonical key format for calendar dates. ISO dates
// compare lexicographically, so string comparison is a total order.
const DateKeyFormat = "2006-01-02"

// DateLabelFormat is the human label shown against a selectable date.
const DateLabelFormat = "Jan 2006"

// SelectedDate is one historical date for which rate-of-return figures may
// be shown, together with the products that actually have data for it.
type SelectedDate struct {
	Date       time.Time       `json:"date"`
	Label      string          `json:"label"`
	ProductIDs map[string]bool `json:"productIds"`
	PastCutoff bool            `json:"pastCutoff"`
}

// NewSelectedDate builds a SelectedDate with its derived label.
func NewSelectedDate(date time.Time) SelectedDate {
	return SelectedDate{
		Date:       date,
		Label:      date.Format(DateLabelFormat),
		ProductIDs: make(map[string]bool),
	}
}
