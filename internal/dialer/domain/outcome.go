package domain

// Outcome is the terminal disposition of a call session.
type Outcome string

const (
	OutcomeInterested    Outcome = "interested"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeCallback      Outcome = "callback"
	OutcomeCompleted     Outcome = "completed"
	OutcomeMissed        Outcome = "missed"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeFailed        Outcome = "failed"
)

var validOutcomes = map[Outcome]bool{
	OutcomeInterested:    true,
	OutcomeNotInterested: true,
	OutcomeCallback:      true,
	OutcomeCompleted:     true,
	OutcomeMissed:        true,
	OutcomeVoicemail:     true,
	OutcomeFailed:        true,
}

// ValidOutcome reports whether o is a known call outcome.
func ValidOutcome(o Outcome) bool {
	return validOutcomes[o]
}

// IsMiss reports whether o counts toward the consecutive-miss streak.
func (o Outcome) IsMiss() bool {
	return o == OutcomeMissed || o == OutcomeVoicemail
}
