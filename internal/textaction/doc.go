// Package textaction implements the text transforms offered for a captured
// selection: upper case, lower case, reverse, and translate. Apply writes the
// result to the clipboard and pastes it back into the window that was active
// when the selection was captured. Paste is best effort; the result stays on
// the clipboard when focus cannot be restored.
package textaction
