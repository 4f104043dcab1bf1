package model

// ShiftRecord is one scheduled work period for one staff member, exactly as
// scraped from the staff portal. Field values are loose: the date label and
// clock strings are whatever the portal rendered, and StaffName is matched
// case-insensitively everywhere. JSON tags match the cache file layout.
type ShiftRecord struct {
	StaffName string `json:"name"`
	DateLabel string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Role      string `json:"role"`
	Type      string `json:"type,omitempty"`
}

// DefaultShiftType is used when the portal row carries no classifier.
const DefaultShiftType = "Shift"

// ShiftType returns the record's classifier, defaulting to "Shift".
func (s ShiftRecord) ShiftType() string {
	if s.Type == "" {
		return DefaultShiftType
	}
	return s.Type
}

// Key returns the de-duplication key used at scrape time. Records are
// replaced wholesale on every refresh, so this is the only identity a
// record has within one cache generation.
func (s ShiftRecord) Key() string {
	return s.StaffName + "|" + s.DateLabel + "|" + s.Start + "|" + s.End + "|" + s.Role
}
