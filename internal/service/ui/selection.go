package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandevgo/workbot/internal/core"
)

const maxPreview = 72

// RenderSelection prints every history turn in order and marks the selected ones.
func RenderSelection(w io.Writer, history, selected []*core.Message) error {
	picked := make(map[*core.Message]struct{}, len(selected))
	for _, m := range selected {
		picked[m] = struct{}{}
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(fmt.Sprintf("Context: %d of %d turns selected", len(selected), len(history))))
	sb.WriteString("\n")

	for _, m := range history {
		_, ok := picked[m]
		sb.WriteString(renderLine(m, ok))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderLine(m *core.Message, selected bool) string {
	mark := DescStyle.Render("  ")
	if selected {
		mark = SelectedStyle.Render("✓ ")
	}

	role := AssistantStyle.Render(fmt.Sprintf("%-9s", m.Role))
	if m.Role == core.RoleUser {
		role = UserStyle.Render(fmt.Sprintf("%-9s", m.Role))
	}

	text := fmt.Sprintf("%s  %s  %s",
		m.CreatedAt.Format(time.DateTime),
		m.Embedding.Status(),
		preview(m.Content),
	)
	if !selected {
		text = DescStyle.Render(text)
	}
	return mark + role + " " + text
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxPreview {
		return s
	}
	return string(r[:maxPreview-1]) + "…"
}
