// internal/puzzle/render.go
//
// Presentation-neutral view of a State, shared by the JSON API, the
// websocket stream and the terminal client.
//
// Disk width is 40 + size*(140/numDisks), so the largest disk of any game is
// 180 wide. Colour cycles through an 8-entry palette keyed by (size-1) mod 8.

package puzzle

// Color is one palette entry.
type Color struct {
	Name     string `json:"name"`
	Hex      string `json:"hex"`      // solid base colour, used by terminal renderers
	Gradient string `json:"gradient"` // CSS background for the web client
}

// Palette is the fixed disk colour table.
var Palette = [8]Color{
	{Name: "Ruby", Hex: "#FF6B6B", Gradient: "linear-gradient(135deg, #FF6B6B 0%, #EE5253 100%)"},
	{Name: "Gold", Hex: "#F1C40F", Gradient: "linear-gradient(135deg, #f1c40f 0%, #d4ac0d 100%)"},
	{Name: "Turquoise", Hex: "#1ABC9C", Gradient: "linear-gradient(135deg, #1abc9c 0%, #16a085 100%)"},
	{Name: "Sapphire", Hex: "#3498DB", Gradient: "linear-gradient(135deg, #3498db 0%, #2980b9 100%)"},
	{Name: "Amethyst", Hex: "#9B59B6", Gradient: "linear-gradient(135deg, #9b59b6 0%, #8e44ad 100%)"},
	{Name: "Amber", Hex: "#E67E22", Gradient: "linear-gradient(135deg, #e67e22 0%, #d35400 100%)"},
	{Name: "Silver", Hex: "#ECF0F1", Gradient: "linear-gradient(135deg, #ecf0f1 0%, #bdc3c7 100%)"},
	{Name: "Emerald", Hex: "#2ECC71", Gradient: "linear-gradient(135deg, #2ecc71 0%, #27ae60 100%)"},
}

const (
	MinDiskWidth  = 40.0
	DiskWidthSpan = 140.0
)

// DiskWidth is the rendered width of a disk in pixels.
func DiskWidth(size, numDisks int) float64 {
	if numDisks < 1 {
		return MinDiskWidth
	}
	return MinDiskWidth + float64(size)*(DiskWidthSpan/float64(numDisks))
}

// ColorIndex maps a disk size onto Palette.
func ColorIndex(size int) int {
	i := (size - 1) % len(Palette)
	if i < 0 {
		i += len(Palette)
	}
	return i
}

// DiskView is one disk as a renderer draws it.
type DiskView struct {
	Size     int     `json:"size"`
	Width    float64 `json:"width"`
	Color    int     `json:"color"`
	Selected bool    `json:"selected"`
}

// Snapshot is the full render input: every peg bottom to top plus the
// selection, move count and win flag.
type Snapshot struct {
	NumDisks  int                 `json:"numDisks"`
	Pegs      [NumPegs][]DiskView `json:"pegs"`
	Moves     int                 `json:"moves"`
	Selection *Selection          `json:"selection,omitempty"`
	Won       bool                `json:"won"`
	MinMoves  int                 `json:"minMoves"`
}

// Snap builds the Snapshot for s. Only the top disk of the selected peg is
// flagged as selected.
func Snap(s State) Snapshot {
	out := Snapshot{
		NumDisks:  s.NumDisks,
		Moves:     s.Moves,
		Selection: s.Selection,
		Won:       s.Won(),
		MinMoves:  MinMoves(s.NumDisks),
	}
	for i, p := range s.Pegs {
		views := make([]DiskView, len(p))
		for j, d := range p {
			selected := s.Selection != nil && s.Selection.Peg == i &&
				s.Selection.Disk == d && j == len(p)-1
			views[j] = DiskView{
				Size:     d,
				Width:    DiskWidth(d, s.NumDisks),
				Color:    ColorIndex(d),
				Selected: selected,
			}
		}
		out.Pegs[i] = views
	}
	return out
}
