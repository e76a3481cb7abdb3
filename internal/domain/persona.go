package domain

import "strings"

// Persona selects the tutoring voice used when generating replies.
type Persona string

const (
	PersonaMentor Persona = "mentor"
	PersonaCritic Persona = "critic"
	PersonaBuddy  Persona = "buddy"
	PersonaCoach  Persona = "coach"
)

var personas = map[Persona]struct{}{
	PersonaMentor: {},
	PersonaCritic: {},
	PersonaBuddy:  {},
	PersonaCoach:  {},
}

// ParsePersona accepts only the closed set of personas.
func ParsePersona(s string) (Persona, bool) {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := personas[p]; ok {
		return p, true
	}
	return "", false
}

// PersonaOrNeutral resolves a stored persona value, falling back to a
// neutral tutor for values written before the enumeration was closed.
func PersonaOrNeutral(s string) Persona {
	if p, ok := ParsePersona(s); ok {
		return p
	}
	return personaNeutral
}

const personaNeutral Persona = "neutral"
