package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/pagination"
)

const cardWidth = 34

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#626262")).Padding(0, 1).Width(cardWidth)
	cardTitle     = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	currentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	disabledStyle = lipgloss.NewStyle().Faint(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// VideoTable renders videos as a bordered table, resolving category names from cats.
func VideoTable(videos []models.Video, cats []models.Category) string {
	t := newTable("ID", "Title", "Category", "Tags", "Amazon Link")
	for _, v := range videos {
		t.Row(
			strconv.FormatInt(v.ID, 10),
			truncate(v.Title, 40),
			CategoryName(cats, v.CategoryID),
			truncate(strings.Join(v.Tags, ", "), 30),
			truncate(v.AmazonLink, 40),
		)
	}
	return t.Render()
}

// VideoCards renders videos as bordered cards laid out in rows that fit width.
func VideoCards(videos []models.Video, cats []models.Category, width int) string {
	if len(videos) == 0 {
		return ""
	}

	perRow := max(1, width/(cardWidth+4))
	var rows []string
	for start := 0; start < len(videos); start += perRow {
		end := min(start+perRow, len(videos))
		cards := make([]string, 0, end-start)
		for _, v := range videos[start:end] {
			cards = append(cards, videoCard(v, cats))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func videoCard(v models.Video, cats []models.Category) string {
	lines := []string{
		cardTitle.Render(truncate(v.Title, cardWidth-2)),
		mutedStyle.Render(fmt.Sprintf("#%d · %s", v.ID, CategoryName(cats, v.CategoryID))),
	}
	if len(v.Tags) > 0 {
		lines = append(lines, truncate(strings.Join(v.Tags, " · "), cardWidth-2))
	}
	if v.AmazonLink != "" {
		lines = append(lines, mutedStyle.Render(truncate(v.AmazonLink, cardWidth-2)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// Videos renders videos in the given view mode.
func Videos(mode models.ViewMode, videos []models.Video, cats []models.Category, width int) string {
	if len(videos) == 0 {
		return mutedStyle.Render("No videos found")
	}
	if mode == models.ViewTable {
		return VideoTable(videos, cats)
	}
	return VideoCards(videos, cats, width)
}

// CategoryTable renders categories as a bordered table.
func CategoryTable(cats []models.Category) string {
	t := newTable("ID", "Name", "Image")
	for _, c := range cats {
		t.Row(strconv.FormatInt(c.ID, 10), c.Name, truncate(c.ImgURL, 50))
	}
	return t.Render()
}

// SubmissionTable renders recorded submissions, newest first as given.
func SubmissionTable(subs []*models.Submission) string {
	t := newTable("When", "Entity", "ID", "Op", "Fields", "Result")
	for _, s := range subs {
		result := "ok"
		if s.Err() != "" {
			result = truncate(s.Err(), 40)
		}
		fields := strings.Join(s.Fields(), ",")
		if s.Multipart() {
			fields += " (multipart)"
		}
		t.Row(
			s.CreatedAt().Local().Format(time.DateTime),
			s.Entity(),
			strconv.FormatInt(s.EntityID(), 10),
			string(s.Operation()),
			truncate(fields, 50),
			result,
		)
	}
	return t.Render()
}

// Control is one navigation control of the page bar.
type Control struct {
	Label   string
	Enabled bool
}

// PageControls returns the first/prev and next/last controls for state, disabled at the boundaries.
func PageControls(state pagination.State) (leading, trailing []Control) {
	pages := max(1, state.TotalPages)
	atStart := state.CurrentPage <= 1
	atEnd := state.CurrentPage >= pages

	leading = []Control{{Label: "« First", Enabled: !atStart}, {Label: "‹ Prev", Enabled: !atStart}}
	trailing = []Control{{Label: "Next ›", Enabled: !atEnd}, {Label: "Last »", Enabled: !atEnd}}
	return leading, trailing
}

// PageBar renders the pagination control: first/prev, the page tokens with the current page bracketed, then
// next/last. Controls that cannot move are rendered faint.
func PageBar(state pagination.State, tokens []pagination.Token) string {
	leading, trailing := PageControls(state)

	parts := make([]string, 0, len(tokens)+4)
	for _, c := range leading {
		parts = append(parts, renderControl(c))
	}
	for _, tok := range tokens {
		switch {
		case tok.Ellipsis:
			parts = append(parts, mutedStyle.Render("…"))
		case tok.Page == state.CurrentPage:
			parts = append(parts, currentStyle.Render(fmt.Sprintf("[%d]", tok.Page)))
		default:
			parts = append(parts, strconv.Itoa(tok.Page))
		}
	}
	for _, c := range trailing {
		parts = append(parts, renderControl(c))
	}
	return strings.Join(parts, " ")
}

func renderControl(c Control) string {
	if c.Enabled {
		return c.Label
	}
	return disabledStyle.Render(c.Label)
}

// Summary renders the list footer, e.g. "Showing 10 of 42 videos".
func Summary(shown, total int, noun string) string {
	return mutedStyle.Render(fmt.Sprintf("Showing %d of %d %s", shown, total, noun))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
