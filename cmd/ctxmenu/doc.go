// Command ctxmenu offers context actions for the current desktop selection.
//
// "ctxmenu popup" is meant to be bound to a hotkey: it copies the selection
// from the focused window, shows the matching actions in a small terminal UI,
// and either runs a batch conversion with live progress or pastes a
// transformed string back into the original window. The convert, text, and
// detect commands expose the same operations headlessly for scripts and
// window-manager bindings; status and config report and manage setup.
package main
