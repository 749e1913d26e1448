// Package main provides a keyboard plugin for macOS.
// It sends keyboard shortcuts and keystrokes via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arvind/mudra/plugins/ascript"
)

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	req, err := ascript.ReadRequest()
	if err != nil {
		ascript.WriteError(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		if err := handleKeystroke(req.Params); err != nil {
			ascript.WriteError(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	default:
		ascript.WriteError(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	ascript.WriteSuccess()
}

// handleKeystroke processes keystroke and shortcut actions.
func handleKeystroke(params json.RawMessage) error {
	var p KeystrokeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	if p.Key == "" {
		return fmt.Errorf("key is required")
	}

	script := buildKeystrokeScript(p.Key, p.Modifiers)
	return ascript.Run(script)
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	if len(modifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	// Convert modifiers to AppleScript format
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	modifierList := strings.Join(appleModifiers, ", ")
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, modifierList)
}
