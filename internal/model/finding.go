package model

// Finding represents a single security observation.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the security implications of this finding.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (port, header, link).
	Value string `json:"value,omitempty"`

	// Location is where the finding was discovered.
	Location string `json:"location,omitempty"`
}

// NewFinding builds a Finding of the given type, filling severity,
// impact, and recommendation from the central mapping so every producer
// reports the same risk for the same weakness.
func NewFinding(findingType, title, value, location string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	}
}
