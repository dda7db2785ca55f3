package domain

// Display constants shared by the template file and step transitions.
const (
	// PendingMarker is the emoji shortcode every template step text carries
	// until the step is completed.
	PendingMarker = ":white_large_square:"

	// CompletedMarker replaces PendingMarker once the step is done.
	CompletedMarker = ":white_check_mark:"

	// CompletedColor is the attachment border color of a completed step.
	CompletedColor = "#439FE0"
)
