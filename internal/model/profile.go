package model

// Field names a piece of state held by a profile form.
type Field string

const (
	FieldMajor  Field = "major"
	FieldYear   Field = "year"
	FieldStatus Field = "status"
)

// Status is the outcome of the most recent profile submission.
type Status string

const (
	StatusEmpty           Status = ""
	StatusSending         Status = "sending"
	StatusSuccess         Status = "success"
	StatusResponseFailure Status = "response_failure"
	StatusNetworkFailure  Status = "network_failure"
)

// Text returns the human-readable status line shown under the form.
func (s Status) Text() string {
	switch s {
	case StatusSending:
		return "Sending..."
	case StatusSuccess:
		return "✅ Submitted successfully!"
	case StatusResponseFailure:
		return "❌ Failed to send."
	case StatusNetworkFailure:
		return "❌ Network error"
	default:
		return ""
	}
}

// Profile is the body posted to the echo endpoint.
// Field order is part of the wire format.
type Profile struct {
	Major string `json:"major"`
	Year  string `json:"year"`
}

// ProfileView is a point-in-time copy of a form's state.
type ProfileView struct {
	ID         string `json:"id"`
	Major      string `json:"major"`
	Year       string `json:"year"`
	Status     Status `json:"status"`
	StatusText string `json:"status_text"`
}

// Profile returns the submittable part of the view.
func (v ProfileView) Profile() Profile {
	return Profile{Major: v.Major, Year: v.Year}
}
