// Package selection turns whatever the user has highlighted into a typed
// Selection: nothing, a text snippet, or an ordered set of files.
//
// The Detector clears the clipboard, sends the copy keystroke, waits for the
// focused application to publish its selection, and then reads the clipboard
// back. A file-list payload wins over text. Detection never fails; any probe
// error is logged and degrades the result towards None.
//
// The Classifier maps file paths to Image, Video, or Other using the
// extension sets from the media configuration.
package selection
