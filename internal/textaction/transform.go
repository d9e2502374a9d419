package textaction

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Action identifies a text transform.
type Action int

const (
	ActionUpper Action = iota + 1
	ActionLower
	ActionReverse
	ActionTranslate
)

// Actions lists every text action in menu order.
var Actions = []Action{ActionUpper, ActionLower, ActionReverse, ActionTranslate}

func (a Action) String() string {
	switch a {
	case ActionUpper:
		return "upper"
	case ActionLower:
		return "lower"
	case ActionReverse:
		return "reverse"
	case ActionTranslate:
		return "translate"
	default:
		return "unknown"
	}
}

// Label is the menu text for the action.
func (a Action) Label() string {
	switch a {
	case ActionUpper:
		return "To Uppercase"
	case ActionLower:
		return "To Lowercase"
	case ActionReverse:
		return "Reverse"
	case ActionTranslate:
		return "Translate"
	default:
		return "Unknown"
	}
}

// ParseAction maps a command name back to an Action.
func ParseAction(name string) (Action, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, a := range Actions {
		if a.String() == normalized {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown text action %q", name)
}

// Upper maps text to upper case without locale-specific rules.
func Upper(text string) string {
	return cases.Upper(language.Und).String(text)
}

// Lower maps text to lower case without locale-specific rules.
func Lower(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Reverse reverses text by code point.
func Reverse(text string) string {
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
