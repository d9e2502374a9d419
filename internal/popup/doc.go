// Package popup is the bubbletea view over a detected selection. It lists the
// available actions, launches batch jobs through a dispatch.Bridge, polls the
// bridge on a fixed tick, and asks overwrite questions inline. Text actions
// are returned to the caller, which applies them once the popup has closed so
// the paste lands in the original window.
package popup
