// Package flash implements the bell-flash controller: a single-goroutine
// loop that owns the flash window's visibility and the deadline at which a
// visible window hides again. Bell notifications make the window visible
// and restart the countdown; the deadline passing hides it. One-shot mode
// flashes once at startup and returns without listening for bells.
package flash
