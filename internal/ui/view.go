package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
)

const quoteListLimit = 8

// renderMain renders the quote builder screen.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	left := m.panel("Selections", m.renderSelections())
	right := m.panel("Pricing", m.renderPricing())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	parts := []string{m.renderHeader(), body}
	if msgs := m.renderMessages(); msgs != "" {
		parts = append(parts, msgs)
	}
	parts = append(parts, m.panel("Saved quotes", m.renderQuotes()))
	parts = append(parts, styles.Footer.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	s := m.current

	name := s.Product.Name
	if name == "" {
		name = "No product"
	}
	if s.Product.StyleNumber != "" {
		name += " (" + s.Product.StyleNumber + ")"
	}

	status := priceStatus(s, m.now())
	segments := []string{
		styles.Logo.Render("swatch"),
		styles.Text.Render(name),
		styles.StatusStyle(status).Render(status),
	}
	if m.busy != "" {
		segments = append(segments, styles.InfoText.Render(m.busy+"..."))
	} else if s.UI.Loading && s.UI.LoadingMessage != "" {
		segments = append(segments, styles.InfoText.Render(s.UI.LoadingMessage))
	}
	if m.lastAction != "" {
		segments = append(segments, styles.FaintText.Render(string(m.lastAction)))
	}
	return styles.Header.Render(strings.Join(segments, "  "))
}

func (m Model) renderSelections() string {
	styles := m.theme.Styles()
	s := m.current
	sel := s.Selections

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}

	row("Quantity", fmt.Sprintf("%d", m.cache.TotalQuantity.Of(s)))
	row("Embellishment", orDash(string(sel.EmbellishmentType)))
	colors := sel.Color
	if len(sel.Colors) > 1 {
		colors = strings.Join(sel.Colors, ", ")
	}
	row("Color", orDash(colors))
	if len(sel.Sizes) > 0 {
		row("Sizes", formatSizes(sel.Sizes))
	}
	row("Locations", orDash(strings.Join(sel.Locations, ", ")))

	if emb, ok := selectors.Embroidery(s); ok {
		row("Stitches", fmt.Sprintf("%d across %d locations", emb.TotalStitches, emb.LocationCount))
	}
	if sp, ok := selectors.ScreenPrint(s); ok {
		row("Screens", fmt.Sprintf("%d (%d colors)", sp.ScreenCount, sp.ColorCount))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFeatures())
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderFeatures() string {
	styles := m.theme.Styles()
	f := m.current.Features
	flags := []struct {
		name string
		on   bool
	}{
		{"multi-color", f.MultiColorSelection},
		{"sizes", f.SizeBreakdown},
		{"quick quote", f.QuickQuote},
		{"auto-save", f.AutoSave},
	}
	out := make([]string, 0, len(flags))
	for _, flag := range flags {
		if flag.on {
			out = append(out, styles.SuccessText.Render("+"+flag.name))
		} else {
			out = append(out, styles.FaintText.Render("-"+flag.name))
		}
	}
	return strings.Join(out, " ")
}

func (m Model) renderPricing() string {
	styles := m.theme.Styles()
	s := m.current
	sum := m.cache.Summary.Of(s)

	if s.Pricing.LastCalculated.IsZero() {
		return styles.FaintText.Render("Not priced yet. Press p to calculate.")
	}

	var b strings.Builder
	row := func(label, value string, style lipgloss.Style) {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}
	row("Unit", money(sum.UnitPrice), styles.Text)
	row("Subtotal", money(sum.Subtotal), styles.Text)
	if sum.SetupFees > 0 {
		row("Setup", money(sum.SetupFees), styles.Text)
	}
	if sum.Discount > 0 {
		row("Discount", fmt.Sprintf("-%s (%d%%)", money(sum.Discount), selectors.DiscountPercentage(s)), styles.SuccessText)
	}
	row("Total", money(sum.TotalPrice), styles.AccentText.Bold(true))

	if msg := selectors.SavingsMessage(s); msg != "" {
		b.WriteString(styles.SuccessText.Render(msg))
		b.WriteString("\n")
	}
	age := m.now().Sub(s.Pricing.LastCalculated).Truncate(time.Second)
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("calculated %s ago", age)))
	return b.String()
}

func (m Model) renderMessages() string {
	styles := m.theme.Styles()
	var lines []string
	for _, e := range m.current.UI.Errors {
		lines = append(lines, styles.DangerText.Render("✖ "+e))
	}
	for _, w := range m.current.UI.Warnings {
		lines = append(lines, styles.WarningText.Render("! "+w))
	}
	if m.flash != "" {
		style := styles.InfoText
		if m.flashErr {
			style = styles.DangerText
		}
		lines = append(lines, style.Render(m.flash))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderQuotes() string {
	styles := m.theme.Styles()
	quotes := m.recentQuotes()
	if len(quotes) == 0 {
		return styles.FaintText.Render("No saved quotes. Press s to save one.")
	}

	current := ""
	if m.current.Quotes.Current != nil {
		current = m.current.Quotes.Current.ID
	}

	lines := make([]string, 0, len(quotes))
	for i, q := range quotes {
		marker := "  "
		if q.ID == current {
			marker = "● "
		}
		line := fmt.Sprintf("%s%-24s %5d pcs  %10s  %s",
			marker, truncate(q.Name, 24), q.Selections.Quantity,
			money(q.Pricing.TotalPrice), q.UpdatedAt.Local().Format("Jan 2 15:04"))
		if i == m.selectedQuote {
			lines = append(lines, styles.Selected.Render(line))
		} else {
			lines = append(lines, styles.Text.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// panel wraps content in a bordered box sized to half the screen.
func (m Model) panel(title, content string) string {
	styles := m.theme.Styles()
	width := max(30, m.width/2-2)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(width)
	return box.Render(styles.AccentText.Bold(true).Render(title) + "\n" + content)
}

// priceStatus labels the pricing state for the header badge.
func priceStatus(s *state.State, now time.Time) string {
	switch {
	case s.UI.Loading:
		return "loading"
	case len(s.UI.Errors) > 0:
		return "error"
	case s.Pricing.LastCalculated.IsZero():
		return "unpriced"
	case selectors.IsPriceStale(s, now):
		return "stale"
	case s.Quotes.Current != nil && !selectors.HasUnsavedChanges(s):
		return "saved"
	default:
		return "priced"
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatSizes(sizes map[string]int) string {
	keys := make([]string, 0, len(sizes))
	for k := range sizes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, sizes[k]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
