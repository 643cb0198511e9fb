package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/kwscan/internal/models"
)

var (
	_ list.Item = resultItem{}
)

// resultItem wraps [models.MatchResult] to implement [list.Item].
type resultItem struct {
	result models.MatchResult
}

func (i resultItem) FilterValue() string { return i.result.File }
func (i resultItem) Title() string       { return fmt.Sprintf("%s • %s", i.result.File, i.result.Location) }
func (i resultItem) Description() string {
	if len(i.result.Keywords) == 0 {
		return i.result.Content
	}
	return fmt.Sprintf("[%s] %s", strings.Join(i.result.Keywords, ", "), i.result.Content)
}

func resultItems(results []models.MatchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
