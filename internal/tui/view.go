package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

var titleCase = cases.Title(language.English)

// View renders the dashboard.
func (m Model) View() string {
	var sections []string

	sections = append(sections,
		titleStyle.Render("♻ Smart Waste Classifier"),
		subtitleStyle.Render("Pick or drop an image of your waste item to get its category and recycling tips"),
		m.renderUpload(),
	)

	if m.snapshot.HasFile() && m.thumbnail != "" {
		sections = append(sections, cardStyle.Render(cardTitleStyle.Render("Image Preview")+"\n"+m.thumbnail))
	}
	if m.snapshot.Result != nil {
		sections = append(sections, m.renderResult(), m.renderTips())
	}
	if m.snapshot.Error != "" {
		sections = append(sections, errorCardStyle.Render(
			errorTextStyle.Render("⚠ Error")+"\n"+errorTextStyle.UnsetBold().Render(m.snapshot.Error)))
	}
	if !m.snapshot.HasFile() && m.snapshot.Result == nil {
		sections = append(sections, renderHowItWorks())
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderUpload() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Upload Image"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Supports JPG, PNG, GIF, WEBP"))

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}

	if m.snapshot.HasFile() {
		b.WriteString("\n\n")
		b.WriteString(m.snapshot.FileName)
		b.WriteString(mutedStyle.Render("  (r to remove)"))
		b.WriteString("\n\n")
		if m.busy() {
			b.WriteString(disabledButtonStyle.Render(m.spinner.View() + " Classifying..."))
		} else {
			b.WriteString(buttonStyle.Render("c  Classify Waste"))
		}
	}
	return cardStyle.Render(b.String())
}

func (m Model) renderResult() string {
	r := m.snapshot.Result
	confidence := strconv.FormatFloat(r.Confidence, 'f', -1, 64)

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("✔ Classification Result"))
	b.WriteString("\n")
	b.WriteString(badgeStyle(r.Prediction).Render(titleCase.String(string(r.Prediction))))
	b.WriteString("\n\n")
	b.WriteString("Confidence  " + lipgloss.NewStyle().Bold(true).Render(confidence+"%"))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(r.Confidence / 100))
	return cardStyle.Render(b.String())
}

func (m Model) renderTips() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("♻ Recycling Tips"))
	if tip, ok := m.snapshot.Tip(); ok {
		b.WriteString("\n")
		b.WriteString(tipStyle.Width(clamp(m.width-10, 20, 80)).Render(tip))
	}
	if m.snapshot.ShowProTip() {
		b.WriteString("\n")
		b.WriteString(proTipStyle.Render("💡 Pro Tip: " + waste.ProTip))
	}
	return cardStyle.Render(b.String())
}

func renderHowItWorks() string {
	steps := []string{
		"Upload a clear image of your waste item",
		"Our AI will classify the waste type",
		"Get personalized recycling tips",
	}
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("How it works"))
	for i, step := range steps {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(strconv.Itoa(i+1)) + "  " + step)
	}
	return cardStyle.Render(b.String())
}
