package waste

// Badge describes how a label is colored on both surfaces.
type Badge struct {
	// Class is the CSS class set used by the web dashboard.
	Class string
	// Foreground and Background are hex colors for terminal rendering.
	Foreground string
	Background string
	Border     string
}

var neutralBadge = Badge{
	Class:      "badge-gray",
	Foreground: "#1F2937",
	Background: "#F3F4F6",
	Border:     "#E5E7EB",
}

var badges = map[Label]Badge{
	Cardboard: {Class: "badge-amber", Foreground: "#92400E", Background: "#FEF3C7", Border: "#FDE68A"},
	Glass:     {Class: "badge-green", Foreground: "#166534", Background: "#DCFCE7", Border: "#BBF7D0"},
	Metal:     neutralBadge,
	Paper:     {Class: "badge-blue", Foreground: "#1E40AF", Background: "#DBEAFE", Border: "#BFDBFE"},
	Plastic:   {Class: "badge-purple", Foreground: "#6B21A8", Background: "#F3E8FF", Border: "#E9D5FF"},
	Trash:     {Class: "badge-red", Foreground: "#991B1B", Background: "#FEE2E2", Border: "#FECACA"},
}

// BadgeFor returns the badge for l, falling back to the neutral style.
func BadgeFor(l Label) Badge {
	if b, ok := badges[l]; ok {
		return b
	}
	return neutralBadge
}
