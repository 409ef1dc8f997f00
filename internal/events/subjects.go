package events

const (
	SubjectParseDegraded = "k9.quality.parse_degraded"
	SubjectCompared      = "k9.versus.compared"

	StreamName   = "K9_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

var StreamSubjects = []string{"k9.quality.>", "k9.versus.>"}
