package models

// Status describes whether an entity produced a usable result
type Status string

const (
	StatusOK               Status = "ok"
	StatusUnavailable      Status = "unavailable"
	StatusInsufficientData Status = "insufficient_data"
	StatusUnconverted      Status = "unconverted"
)
