// Package logs reads the ctxmenu log file for the logs command.
//
// The popup writes only to the log file, so this is the way to see what a
// hotkey-launched run did. Last returns the trailing lines; Follow polls for
// appended lines and restarts from the top when the file is truncated.
package logs
