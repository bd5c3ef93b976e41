package domain

import "strings"

// Metadata holds descriptive, non-vital data about an individual.
type Metadata struct {
	name string
}

// NewMetadata validates name and returns Metadata holding the trimmed name.
func NewMetadata(name string) (Metadata, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Metadata{}, &MissingIndividualNameError{}
	}
	return Metadata{name: trimmed}, nil
}

// Name returns the display name.
func (m Metadata) Name() string { return m.name }
