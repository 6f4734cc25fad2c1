// Package watch re-runs the item pipeline whenever its input files change.
// It monitors files and directories with fsnotify, debounces bursts of
// events, and reports how item outcomes shifted between runs.
package watch
