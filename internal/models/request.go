package models

// EditEventRequest is the payload posted by the table host when a cell edit
// occurs. Only edits of the trigger column to the checked value start a
// notification; everything else is a no-op at the API boundary.
type EditEventRequest struct {
	Row    int    `json:"row" binding:"required"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// TriggerResponse acknowledges an accepted edit event
type TriggerResponse struct {
	Status string `json:"status"`
}

// ScanResponse reports how many reminder notifications were sent
type ScanResponse struct {
	Sent int `json:"sent"`
}

// ArchiveResponse reports how many terminal rows were moved to the archive
type ArchiveResponse struct {
	Moved int `json:"moved"`
}

// ImportResponse reports the outcome of a bulk import
type ImportResponse struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}
