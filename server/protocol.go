package server

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/species"
)

// Protocol uses single-character JSON keys to keep frames small.
// Coordinates and radii are rounded to one decimal place.
//
// Message type constants (value of "t" field):
//
//	Client → Server:
//	  "b" = begin   {"t":"b"}
//	  "g" = toggle  {"t":"g","k":"vision","e":0}   (k=trait, e=enabled 0/1)
//	  "p" = pause   {"t":"p"}
//	  "v" = speed   {"t":"v","s":4}                (s=ticks per update)
//	Server → Client:
//	  "w" = welcome {"t":"w","i":"id","w":800,"h":600,"s":[species]}
//	  "f" = frame   {"t":"f","k":12,"r":0,"b":1,"e":[entities],"p":[panel],"g":[1,1,1,1,1]}
//	  "x" = error   {"t":"x","m":"message"}
//
// EntityDTO:  {"i":7,"s":1,"x":1.0,"y":2.0,"r":10,"c":"#ffffff","v":100,"d":0}
//
//	d = status (0 alive, 1 starved, 2 eaten), v omitted unless alive
//
// PanelDTO:   {"n":"Primary","a":12,"t":15,"l":88}
const (
	MsgBegin   = "b"
	MsgToggle  = "g"
	MsgPause   = "p"
	MsgSpeed   = "v"
	MsgWelcome = "w"
	MsgFrame   = "f"
	MsgError   = "x"
)

// ClientMessage is the base incoming message from the browser.
type ClientMessage struct {
	Type    string `json:"t"`
	Trait   string `json:"k,omitempty"`
	Enabled int    `json:"e,omitempty"` // 0 or 1
	Steps   int    `json:"s,omitempty"`
}

// DecodeCommand parses a client message into a simulation command.
func DecodeCommand(raw []byte) (render.Command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return render.Command{}, fmt.Errorf("decoding message: %w", err)
	}

	switch msg.Type {
	case MsgBegin:
		return render.Command{Kind: render.CommandBegin}, nil
	case MsgToggle:
		t, err := evolution.ParseTrait(msg.Trait)
		if err != nil {
			return render.Command{}, err
		}
		return render.Command{Kind: render.CommandToggle, Trait: t, Enabled: msg.Enabled == 1}, nil
	case MsgPause:
		return render.Command{Kind: render.CommandPause}, nil
	case MsgSpeed:
		return render.Command{Kind: render.CommandSpeed, Steps: msg.Steps}, nil
	default:
		return render.Command{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// SpeciesDTO describes one species in the welcome message.
type SpeciesDTO struct {
	Name  string `json:"n"`
	Color string `json:"c"`
	Tier  int    `json:"r"`
}

// WelcomeMsg is sent to a client immediately on connect.
type WelcomeMsg struct {
	Type    string       `json:"t"`
	ID      string       `json:"i"`
	Width   float64      `json:"w"`
	Height  float64      `json:"h"`
	Species []SpeciesDTO `json:"s"`
}

// NewWelcome builds the welcome message for a client.
func NewWelcome(id string, width, height float64, table *species.Table) WelcomeMsg {
	msg := WelcomeMsg{Type: MsgWelcome, ID: id, Width: width, Height: height}
	for _, d := range table.All() {
		msg.Species = append(msg.Species, SpeciesDTO{Name: d.Name, Color: hexColor(d.Color), Tier: d.Tier})
	}
	return msg
}

// EntityDTO is the compact entity for per-tick frames.
type EntityDTO struct {
	ID      uint32  `json:"i"`
	Species uint8   `json:"s"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"r"`
	Color   string  `json:"c"`
	Vision  float64 `json:"v,omitempty"`
	Status  uint8   `json:"d"`
}

// PanelDTO is one summary panel row.
type PanelDTO struct {
	Name    string `json:"n"`
	Alive   int    `json:"a"`
	Total   int    `json:"t"`
	Longest int32  `json:"l"`
}

// FrameMsg is the per-tick state update.
type FrameMsg struct {
	Type     string      `json:"t"`
	Tick     int64       `json:"k"`
	Trial    int         `json:"r"`
	Started  int         `json:"b"` // 0 or 1
	Paused   int         `json:"z,omitempty"`
	Entities []EntityDTO `json:"e"`
	Panel    []PanelDTO  `json:"p"`
	Toggles  []int       `json:"g"`
}

// EncodeFrame converts a frame into its wire form.
func EncodeFrame(f *render.Frame) FrameMsg {
	msg := FrameMsg{
		Type:     MsgFrame,
		Tick:     f.Tick,
		Trial:    f.Trial,
		Started:  boolInt(f.Started),
		Paused:   boolInt(f.Paused),
		Entities: make([]EntityDTO, len(f.Samples)),
		Panel:    make([]PanelDTO, len(f.Panel.Species)),
		Toggles:  make([]int, 0, evolution.NumTraits),
	}
	for i, s := range f.Samples {
		msg.Entities[i] = EntityDTO{
			ID:      s.ID,
			Species: s.Species,
			X:       round1(s.X),
			Y:       round1(s.Y),
			Radius:  round1(s.Radius),
			Color:   hexColor(s.Color),
			Status:  uint8(s.Status),
		}
		if s.Status == components.StatusAlive {
			msg.Entities[i].Vision = round1(s.Vision)
		}
	}
	for i, row := range f.Panel.Species {
		msg.Panel[i] = PanelDTO{Name: row.Name, Alive: row.Alive, Total: row.Total, Longest: row.Longest}
	}
	for _, t := range evolution.AllTraits() {
		msg.Toggles = append(msg.Toggles, boolInt(f.Toggles.Enabled(t)))
	}
	return msg
}

// ErrorMsg reports a rejected command.
type ErrorMsg struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}

func hexColor(c components.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
