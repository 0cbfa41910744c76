package core

import (
	"sort"
	"strconv"
	"strings"
)

// Mode is the functional configuration of a GPIO pin.
// Values match the wiringPi numbering and are passed to drivers unmodified.
type Mode int

const (
	ModeInput     Mode = 0
	ModeOutput    Mode = 1
	ModePWMOutput Mode = 2
)

// Level is the logic level of a pin
type Level int

const (
	LevelLow  Level = 0
	LevelHigh Level = 1
)

// Constant group names as exposed to callers
const (
	GroupPinMode = "PIN_MODE"
	GroupWrite   = "WRITE"
)

var modeNames = map[Mode]string{
	ModeInput:     "INPUT",
	ModeOutput:    "OUTPUT",
	ModePWMOutput: "PWM_OUTPUT",
}

var levelNames = map[Level]string{
	LevelLow:  "LOW",
	LevelHigh: "HIGH",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "Level(" + strconv.Itoa(int(l)) + ")"
}

// ParseMode converts a raw integer to a Mode and reports whether it is one
// of the known pin modes. The returned Mode carries the raw value either way.
func ParseMode(v int) (Mode, bool) {
	m := Mode(v)
	_, ok := modeNames[m]
	return m, ok
}

// ParseLevel converts a raw integer to a Level and reports whether it is
// LOW or HIGH. The returned Level carries the raw value either way.
func ParseLevel(v int) (Level, bool) {
	l := Level(v)
	_, ok := levelNames[l]
	return l, ok
}

// Constants returns the named constant groups, PIN_MODE and WRITE.
// A fresh copy is returned on every call so callers cannot mutate the registry.
func Constants() map[string]map[string]int {
	modes := make(map[string]int, len(modeNames))
	for m, name := range modeNames {
		modes[name] = int(m)
	}
	levels := make(map[string]int, len(levelNames))
	for l, name := range levelNames {
		levels[name] = int(l)
	}
	return map[string]map[string]int{
		GroupPinMode: modes,
		GroupWrite:   levels,
	}
}

// ConstantNames returns every qualified constant name ("PIN_MODE.INPUT", ...)
// in sorted order
func ConstantNames() []string {
	var names []string
	for group, values := range Constants() {
		for name := range values {
			names = append(names, group+"."+name)
		}
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a constant by qualified ("WRITE.HIGH") or bare ("HIGH") name.
// Names are case sensitive.
func Lookup(name string) (int, bool) {
	consts := Constants()
	if group, key, ok := strings.Cut(name, "."); ok {
		values, ok := consts[group]
		if !ok {
			return 0, false
		}
		v, ok := values[key]
		return v, ok
	}
	for _, values := range consts {
		if v, ok := values[name]; ok {
			return v, true
		}
	}
	return 0, false
}
