// Package main provides a system control plugin for macOS.
// It handles volume, brightness, and media playback controls via AppleScript.
package main

import (
	"fmt"

	"github.com/arvind/mudra/plugins/ascript"
)

// actionHandler defines a function type for handling specific actions.
type actionHandler func() error

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"volume-up":        volumeUp,
	"volume-down":      volumeDown,
	"volume-mute":      volumeMute,
	"brightness-up":    brightnessUp,
	"brightness-down":  brightnessDown,
	"media-play-pause": mediaPlayPause,
	"media-next":       mediaNext,
	"media-prev":       mediaPrev,
}

func main() {
	req, err := ascript.ReadRequest()
	if err != nil {
		ascript.WriteError(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		ascript.WriteError(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	if err := handler(); err != nil {
		ascript.WriteError(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	ascript.WriteSuccess()
}

// volumeUp increases the system volume by 10%.
func volumeUp() error {
	script := `set volume output volume ((output volume of (get volume settings)) + 10)`
	return ascript.Run(script)
}

// volumeDown decreases the system volume by 10%.
func volumeDown() error {
	script := `set volume output volume ((output volume of (get volume settings)) - 10)`
	return ascript.Run(script)
}

// volumeMute toggles the system mute state.
func volumeMute() error {
	script := `set volume output muted (not (output muted of (get volume settings)))`
	return ascript.Run(script)
}

// brightnessUp increases the screen brightness.
func brightnessUp() error {
	script := `tell application "System Events"
	key code 144
end tell`
	return ascript.Run(script)
}

// brightnessDown decreases the screen brightness.
func brightnessDown() error {
	script := `tell application "System Events"
	key code 145
end tell`
	return ascript.Run(script)
}

// mediaPlayPause toggles media play/pause using the F8/Play-Pause media key.
func mediaPlayPause() error {
	script := `tell application "System Events"
	key code 100
end tell`
	return ascript.Run(script)
}

// mediaNext skips to the next track using the F9/Next media key.
func mediaNext() error {
	script := `tell application "System Events"
	key code 101
end tell`
	return ascript.Run(script)
}

// mediaPrev skips to the previous track using the F7/Previous media key.
func mediaPrev() error {
	script := `tell application "System Events"
	key code 98
end tell`
	return ascript.Run(script)
}
