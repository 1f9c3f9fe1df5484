package background

// Entry is one selectable background image.
type Entry struct {
	ID    string `json:"id" koanf:"id"`
	File  string `json:"file" koanf:"file"`
	Name  string `json:"name" koanf:"name"`
	Color string `json:"color" koanf:"color"`
}

// DefaultEntries returns the stock rotation of four backgrounds.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "bocchi", File: "bocchi.jpg", Name: "Hitori Gotoh", Color: "#FFB6C1"},
		{ID: "kita", File: "kita.jpg", Name: "Ikuyo Kita", Color: "#98FB98"},
		{ID: "ryo", File: "ryo.jpg", Name: "Ryo Yamada", Color: "#87CEEB"},
		{ID: "nijika", File: "nijika.jpg", Name: "Nijika Ijichi", Color: "#F0E68C"},
	}
}

// State is the rotator's transition state.
type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	default:
		return "unknown"
	}
}
