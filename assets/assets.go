package assets

// Type is the source language of an asset.
type Type string

const (
	TypeJS  Type = "js"
	TypeCSS Type = "css"
)

// Location is the logical root an asset resolves under. Library asset names
// may carry nested sub-paths ("Tickers/News"); widget and layout assets are
// keyed by their bare component name.
type Location string

const (
	LocationWidgets   Location = "Widgets"
	LocationLayouts   Location = "Layouts"
	LocationLibraries Location = "Libraries"
)

// Priority bands assigned during discovery. Lower loads earlier.
const (
	PriorityTicker      = 0
	PriorityInitializer = 1
	PriorityDefault     = 100
	PriorityAnimation   = 101
)

// Descriptor names one source fragment eligible for inclusion in a bundle.
//
// Identity is (Name, Type, Location); Priority is deliberately excluded, so
// re-registering the same asset with a different priority is a no-op.
type Descriptor struct {
	Name     string
	Location Location
	Type     Type
	Priority int
}

// Path is the human-readable form used in debug bundle markers, e.g.
// "Libraries/Tickers/News.js" or "Widgets/CardWidget.css".
func (d Descriptor) Path() string {
	return string(d.Location) + "/" + d.Name + "." + string(d.Type)
}
