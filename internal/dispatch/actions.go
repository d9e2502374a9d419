package dispatch

import (
	"fmt"

	"ctxmenu/internal/encoding"
	"ctxmenu/internal/selection"
	"ctxmenu/internal/textaction"
)

// NoContextMessage is shown when the selection offers no actions.
const NoContextMessage = "No valid context detected."

// Action is one menu entry. Exactly one of Text or Operation is set.
type Action struct {
	Label     string
	Text      textaction.Action
	Operation encoding.Operation
	Files     []string
}

// IsBatch reports whether the action runs a conversion job.
func (a Action) IsBatch() bool {
	return a.Operation != 0
}

// BuildActions lists the actions available for sel. Files that are neither
// images nor videos are left out silently; MP4 inputs are never offered
// for MP4 conversion.
func BuildActions(sel selection.Selection, classifier *selection.Classifier) []Action {
	switch sel.Kind() {
	case selection.KindText:
		actions := make([]Action, 0, len(textaction.Actions))
		for _, a := range textaction.Actions {
			actions = append(actions, Action{Label: a.Label(), Text: a})
		}
		return actions
	case selection.KindFiles:
		files, _ := sel.Files()
		return fileActions(classifier.Partition(files))
	default:
		return nil
	}
}

func fileActions(p selection.Partition) []Action {
	var actions []Action
	if len(p.Images) > 0 {
		actions = append(actions, Action{
			Label:     fmt.Sprintf("Convert %d Image(s)", len(p.Images)),
			Operation: encoding.OpConvertImage,
			Files:     p.Images,
		})
	}
	if len(p.Videos) == 0 {
		return actions
	}
	var nonMP4 []string
	for _, path := range p.Videos {
		if !selection.IsMP4(path) {
			nonMP4 = append(nonMP4, path)
		}
	}
	if len(nonMP4) > 0 {
		actions = append(actions, Action{
			Label:     fmt.Sprintf("Convert %d to MP4", len(nonMP4)),
			Operation: encoding.OpToMP4,
			Files:     nonMP4,
		})
	}
	actions = append(actions, Action{
		Label:     fmt.Sprintf("Compress %d Video(s)", len(p.Videos)),
		Operation: encoding.OpCompress,
		Files:     append([]string(nil), p.Videos...),
	})
	return actions
}
