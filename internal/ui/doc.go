// Package ui renders live migration progress in the terminal. The fancy mode
// is a bubbletea model showing two panels side by side, migration workers on
// the left and the download queue on the right, refreshed on a steady tick
// and on every pipeline event; while it owns the screen, log output is
// redirected to a file in the run log dir. The plain mode is a single
// progress bar over the regular log stream. All user-controlled strings are
// sanitized and width-truncated before they reach a frame.
package ui
