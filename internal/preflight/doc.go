// Package preflight provides readiness checks for the binaries, directories,
// and translation service ctxmenu depends on.
//
// The "ctxmenu status" command renders every check; the popup runs RunAll
// before showing actions and logs failures without blocking, since text
// actions keep working when ffmpeg is missing and vice versa.
package preflight
