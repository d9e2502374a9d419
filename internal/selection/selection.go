package selection

// Kind tags the variant held by a Selection.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindFiles
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFiles:
		return "files"
	default:
		return "none"
	}
}

// Selection is the immutable result of one detection. Accessors return
// copies so callers cannot mutate a captured selection.
type Selection struct {
	kind  Kind
	text  string
	files []string
}

// None returns the empty selection.
func None() Selection {
	return Selection{kind: KindNone}
}

// Text returns a text selection.
func Text(text string) Selection {
	return Selection{kind: KindText, text: text}
}

// Files returns a file-set selection holding a copy of paths. An empty set
// collapses to None.
func Files(paths []string) Selection {
	if len(paths) == 0 {
		return None()
	}
	return Selection{kind: KindFiles, files: append([]string(nil), paths...)}
}

// Kind returns the variant tag.
func (s Selection) Kind() Kind {
	return s.kind
}

// Text returns the captured text; ok is false for non-text selections.
func (s Selection) Text() (string, bool) {
	return s.text, s.kind == KindText
}

// Files returns a copy of the captured paths; ok is false for non-file selections.
func (s Selection) Files() ([]string, bool) {
	if s.kind != KindFiles {
		return nil, false
	}
	return append([]string(nil), s.files...), true
}
