// Package ui is the raylib window presenter: it draws each frame's entities
// and summary panel, and turns keyboard and raygui input into commands.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trophic/components"
)

// Theme holds UI styling constants.
type Theme struct {
	Background     rl.Color
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	VisionColor    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	FontSize       int32
	HeaderFontSize int32
	PanelWidth     int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:     rl.Black,
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.White,
		VisionColor:    rl.Color{R: 255, G: 255, B: 255, A: 40},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     90,
		FontSize:       14,
		HeaderFontSize: 16,
		PanelWidth:     260,
	}
}

// ToRL converts an entity color to an opaque raylib color.
func ToRL(c components.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}
