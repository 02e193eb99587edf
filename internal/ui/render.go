package ui

import (
	"strings"

	"github.com/estate/estate/internal/people"
)

// EmptyListMessage is shown instead of cards when the list is empty
const EmptyListMessage = "No people found."

// RenderPeople renders one card per record in list order
func RenderPeople(records []people.Record, styles Styles) string {
	if len(records) == 0 {
		return styles.Muted.Render(EmptyListMessage)
	}

	cards := make([]string, 0, len(records))
	for _, r := range records {
		cards = append(cards, renderCard(r, styles))
	}
	return strings.Join(cards, "\n")
}

func renderCard(r people.Record, styles Styles) string {
	var sb strings.Builder
	sb.WriteString(styles.CardTitle.Render(r.Label()))
	sb.WriteString(" ")
	sb.WriteString(styles.Muted.Render("(" + r.Key() + ")"))
	if slug := r.Slug(); slug != "" && slug != r.Label() {
		sb.WriteString("\n")
		sb.WriteString(styles.Muted.Render(slug))
	}
	if bio := r.Bio(); bio != "" {
		sb.WriteString("\n")
		sb.WriteString(bio)
	}
	return styles.Card.Render(sb.String())
}
