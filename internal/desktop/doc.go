// Package desktop adapts the X11 desktop helpers ctxmenu depends on.
//
// Clipboard text goes through github.com/atotto/clipboard. The file list a
// file manager places on the clipboard is read as a text/uri-list target with
// xclip, and keystrokes plus window focus go through xdotool. Callers depend
// on the Clipboard and Window interfaces so tests can substitute fakes.
package desktop
