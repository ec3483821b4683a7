// Package waste holds the fixed recycling knowledge shown next to a classification.
package waste

// Label is one of the waste categories the classification service returns.
type Label string

const (
	Cardboard Label = "cardboard"
	Glass     Label = "glass"
	Metal     Label = "metal"
	Paper     Label = "paper"
	Plastic   Label = "plastic"
	Trash     Label = "trash"
)

// ProTip is shown under the label tip for every recyclable label.
const ProTip = "Always check your local recycling guidelines as they may vary by location."

var labels = []Label{Cardboard, Glass, Metal, Paper, Plastic, Trash}

var tips = map[Label]string{
	Cardboard: "Remove tape and flatten cardboard boxes before recycling. Keep them dry and clean.",
	Glass:     "Rinse glass containers and remove lids. Don't recycle broken glass in regular bins.",
	Metal:     "Empty and rinse cans thoroughly. Labels can stay on, but remove any plastic caps.",
	Paper:     "Avoid recycling wet or greasy paper (like pizza boxes). Shred sensitive documents.",
	Plastic:   "Check for recycling numbers 1-7. Rinse bottles and containers before recycling.",
	Trash:     "This item can't be recycled. Consider reducing consumption or finding reuse opportunities.",
}

// Labels returns the known labels in display order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}

// IsKnown reports whether l is one of the six labels.
func IsKnown(l Label) bool {
	_, ok := tips[l]
	return ok
}

// Tip returns the advisory sentence for l. Unknown labels have none.
func Tip(l Label) (string, bool) {
	tip, ok := tips[l]
	return tip, ok
}

// ShowProTip reports whether the generic pro-tip accompanies l.
func ShowProTip(l Label) bool {
	return l != Trash
}
