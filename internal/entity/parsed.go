package entity

// ParsedStudent is a candidate roster row produced by the extraction step.
// It exists only for the lifetime of one import flow.
type ParsedStudent struct {
	Name           string  `json:"name"`
	RollNumber     string  `json:"roll_number,omitempty"`
	Department     string  `json:"department"`
	Year           string  `json:"year"` // "1".."4"
	Section        string  `json:"section,omitempty"`
	IsLateralEntry bool    `json:"is_lateral_entry,omitempty"`
	TotalFees      float64 `json:"total_fees,omitempty"`
	PaidFees       float64 `json:"paid_fees,omitempty"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
}

// ParsedAttendanceRecord is a candidate attendance-sheet row. Transient,
// same lifecycle as ParsedStudent.
type ParsedAttendanceRecord struct {
	RollNumber string `json:"roll_number"`
	Month      string `json:"month"` // full English month name
	Year       int    `json:"year"`  // 4-digit
	Present    int    `json:"present"`
	Total      int    `json:"total"`
}
