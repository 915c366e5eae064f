package model

import "time"

// Source indicates where an utterance came from.
type Source string

const (
	SourceSpeech   Source = "speech"
	SourceTyped    Source = "typed"
	SourceScripted Source = "scripted"
)

// Utterance is one unit of user input for a single turn. It is ephemeral:
// created when input arrives and consumed by the parser immediately.
type Utterance struct {
	Text      string
	Source    Source
	CreatedAt time.Time
}

// NewUtterance creates an utterance stamped with the current time.
func NewUtterance(text string, source Source) Utterance {
	return Utterance{
		Text:      text,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}
