package appstate

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
)

// Editor actions that can be bound to keys.
const (
	ActionSelect       = "select"
	ActionRectangle    = "rectangle"
	ActionCircle       = "circle"
	ActionLine         = "line"
	ActionArrow        = "arrow"
	ActionText         = "text"
	ActionNumber       = "number"
	ActionUndo         = "undo"
	ActionRedo         = "redo"
	ActionDelete       = "delete"
	ActionEditText     = "edit_text"
	ActionCancel       = "cancel"
	ActionSave         = "save"
	ActionCopy         = "copy"
	ActionQuit         = "quit"
	ActionBlurMore     = "blur_more"
	ActionBlurLess     = "blur_less"
	ActionNoiseMore    = "noise_more"
	ActionNoiseLess    = "noise_less"
	ActionRadiusMore   = "radius_more"
	ActionRadiusLess   = "radius_less"
	ActionShadowMore   = "shadow_more"
	ActionShadowLess   = "shadow_less"
	ActionBackground   = "next_background"
	ActionSetDefault   = "set_default_background"
	ActionNudgeLeft    = "nudge_left"
	ActionNudgeRight   = "nudge_right"
	ActionNudgeUp      = "nudge_up"
	ActionNudgeDown    = "nudge_down"
	ActionClearAll     = "clear_annotations"
	ActionResetEditing = "reset"
)

// DefaultShortcuts maps every action to its default chords. Several chords
// are separated by commas, so the comma key itself is written "comma".
var DefaultShortcuts = map[string]string{
	ActionSelect:       "m",
	ActionRectangle:    "x",
	ActionCircle:       "o",
	ActionLine:         "l",
	ActionArrow:        "a",
	ActionText:         "t",
	ActionNumber:       "h",
	ActionUndo:         "ctrl+z",
	ActionRedo:         "ctrl+shift+z,ctrl+y",
	ActionDelete:       "delete,backspace",
	ActionEditText:     "enter",
	ActionCancel:       "escape",
	ActionSave:         "ctrl+s",
	ActionCopy:         "ctrl+c",
	ActionQuit:         "q,ctrl+q",
	ActionBlurMore:     "]",
	ActionBlurLess:     "[",
	ActionNoiseMore:    "'",
	ActionNoiseLess:    ";",
	ActionRadiusMore:   ".",
	ActionRadiusLess:   "comma",
	ActionShadowMore:   "=",
	ActionShadowLess:   "-",
	ActionBackground:   "b",
	ActionSetDefault:   "ctrl+b",
	ActionNudgeLeft:    "left",
	ActionNudgeRight:   "right",
	ActionNudgeUp:      "up",
	ActionNudgeDown:    "down",
	ActionClearAll:     "ctrl+shift+delete",
	ActionResetEditing: "ctrl+r",
}

// Actions returns every bindable action name, sorted.
func Actions() []string {
	out := make([]string, 0, len(DefaultShortcuts))
	for a := range DefaultShortcuts {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// KeyShortcut is a single key chord. Printable keys are matched by Rune,
// everything else by Code.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

var namedCodes = map[string]key.Code{
	"enter":     key.CodeReturnEnter,
	"return":    key.CodeReturnEnter,
	"escape":    key.CodeEscape,
	"esc":       key.CodeEscape,
	"delete":    key.CodeDeleteForward,
	"del":       key.CodeDeleteForward,
	"backspace": key.CodeDeleteBackspace,
	"tab":       key.CodeTab,
	"left":      key.CodeLeftArrow,
	"right":     key.CodeRightArrow,
	"up":        key.CodeUpArrow,
	"down":      key.CodeDownArrow,
	"home":      key.CodeHome,
	"end":       key.CodeEnd,
	"pageup":    key.CodePageUp,
	"pagedown":  key.CodePageDown,
}

var namedRunes = map[string]rune{
	"space": ' ',
	"plus":  '+',
	"minus": '-',
	"comma": ',',
}

var modifierNames = map[string]key.Modifiers{
	"ctrl":    key.ModControl,
	"control": key.ModControl,
	"shift":   key.ModShift,
	"alt":     key.ModAlt,
	"meta":    key.ModMeta,
	"super":   key.ModMeta,
	"cmd":     key.ModMeta,
}

// ParseShortcut parses a chord such as "ctrl+shift+z", "delete" or "]".
func ParseShortcut(s string) (KeyShortcut, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return KeyShortcut{}, fmt.Errorf("empty shortcut")
	}
	name, mods := v, ""
	if strings.HasSuffix(v, "++") || v == "+" {
		name, mods = "+", strings.TrimSuffix(strings.TrimSuffix(v, "+"), "+")
	} else if i := strings.LastIndex(v, "+"); i >= 0 {
		name, mods = v[i+1:], v[:i]
	}

	var sc KeyShortcut
	if mods != "" {
		for _, m := range strings.Split(mods, "+") {
			mod, ok := modifierNames[m]
			if !ok {
				return KeyShortcut{}, fmt.Errorf("shortcut %q: unknown modifier %q", s, m)
			}
			sc.Modifiers |= mod
		}
	}
	if c, ok := namedCodes[name]; ok {
		sc.Code = c
		return sc, nil
	}
	if r, ok := namedRunes[name]; ok {
		sc.Rune = r
		return sc, nil
	}
	if utf8.RuneCountInString(name) != 1 {
		return KeyShortcut{}, fmt.Errorf("shortcut %q: unknown key %q", s, name)
	}
	r, _ := utf8.DecodeRuneInString(name)
	sc.Rune = unicode.ToLower(r)
	return sc, nil
}

var codeNames = map[key.Code]string{
	key.CodeReturnEnter:     "enter",
	key.CodeEscape:          "escape",
	key.CodeDeleteForward:   "delete",
	key.CodeDeleteBackspace: "backspace",
	key.CodeTab:             "tab",
	key.CodeLeftArrow:       "left",
	key.CodeRightArrow:      "right",
	key.CodeUpArrow:         "up",
	key.CodeDownArrow:       "down",
	key.CodeHome:            "home",
	key.CodeEnd:             "end",
	key.CodePageUp:          "pageup",
	key.CodePageDown:        "pagedown",
}

// String formats sc the way ParseShortcut reads it.
func (sc KeyShortcut) String() string {
	var parts []string
	if sc.Modifiers&key.ModControl != 0 {
		parts = append(parts, "ctrl")
	}
	if sc.Modifiers&key.ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if sc.Modifiers&key.ModMeta != 0 {
		parts = append(parts, "meta")
	}
	if sc.Modifiers&key.ModShift != 0 {
		parts = append(parts, "shift")
	}
	switch {
	case sc.Rune == ' ':
		parts = append(parts, "space")
	case sc.Rune != 0:
		parts = append(parts, string(sc.Rune))
	default:
		parts = append(parts, codeNames[sc.Code])
	}
	return strings.Join(parts, "+")
}

// Keymap resolves key events to action names.
type Keymap struct {
	bindings map[KeyShortcut]string
	labels   map[string]string
}

// NewKeymap builds a keymap from DefaultShortcuts with overrides applied
// on top. An override replaces every default chord of its action. Unknown
// actions and unparsable chords are reported together; the valid part of
// the map is still returned.
func NewKeymap(overrides ...map[string]string) (*Keymap, error) {
	chords := map[string]string{}
	for a, c := range DefaultShortcuts {
		chords[a] = c
	}
	var problems []string
	for _, o := range overrides {
		for a, c := range o {
			a = strings.ToLower(strings.TrimSpace(a))
			if _, ok := DefaultShortcuts[a]; !ok {
				problems = append(problems, fmt.Sprintf("unknown action %q", a))
				continue
			}
			chords[a] = c
		}
	}

	km := &Keymap{bindings: map[KeyShortcut]string{}, labels: map[string]string{}}
	for _, a := range Actions() {
		for _, c := range strings.Split(chords[a], ",") {
			if strings.TrimSpace(c) == "" {
				continue
			}
			sc, err := ParseShortcut(c)
			if err != nil {
				problems = append(problems, err.Error())
				continue
			}
			if prev, ok := km.bindings[sc]; ok && prev != a {
				problems = append(problems, fmt.Sprintf("%s bound to both %s and %s", sc, prev, a))
				continue
			}
			km.bindings[sc] = a
			if _, ok := km.labels[a]; !ok {
				km.labels[a] = sc.String()
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return km, fmt.Errorf("shortcuts: %s", strings.Join(problems, "; "))
	}
	return km, nil
}

// Action returns the action bound to the key event. Shift is ignored for
// keys that are not letters, so "+" matches whichever way it is typed.
func (km *Keymap) Action(e key.Event) (string, bool) {
	mods := e.Modifiers & (key.ModControl | key.ModShift | key.ModAlt | key.ModMeta)
	var tries []KeyShortcut
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		r := unicode.ToLower(e.Rune)
		tries = append(tries, KeyShortcut{Rune: r, Modifiers: mods})
		if !unicode.IsLetter(r) {
			tries = append(tries, KeyShortcut{Rune: r, Modifiers: mods &^ key.ModShift})
		}
	}
	if e.Code != key.CodeUnknown {
		if r := codeRune(e.Code); r != 0 {
			tries = append(tries, KeyShortcut{Rune: r, Modifiers: mods})
		}
		tries = append(tries, KeyShortcut{Code: e.Code, Modifiers: mods}, KeyShortcut{Code: e.Code, Modifiers: mods &^ key.ModShift})
	}
	for _, t := range tries {
		if a, ok := km.bindings[t]; ok {
			return a, true
		}
	}
	return "", false
}

// Label returns the first chord bound to action, for hints.
func (km *Keymap) Label(action string) string { return km.labels[action] }

// codeRune maps letter and digit codes to their rune. With control held
// some drivers report no rune at all.
func codeRune(c key.Code) rune {
	switch {
	case c >= key.CodeA && c <= key.CodeZ:
		return 'a' + rune(c-key.CodeA)
	case c >= key.Code1 && c <= key.Code9:
		return '1' + rune(c-key.Code1)
	case c == key.Code0:
		return '0'
	}
	return 0
}
