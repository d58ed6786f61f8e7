package models

import "github.com/julianstephens/peakstate/internal/constants"

// Header is the user-editable title block shown above reports.
type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// DefaultHeader returns the header used when none has been saved.
func DefaultHeader() Header {
	return Header{
		Title:    constants.DefaultHeaderTitle,
		Subtitle: constants.DefaultHeaderSubtitle,
	}
}
