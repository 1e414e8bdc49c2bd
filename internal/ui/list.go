package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/shopx/internal/models"
)

var _ list.Item = categoryItem{}

// categoryItem wraps [models.Category] to implement [list.Item].
type categoryItem struct {
	category models.Category
}

func (i categoryItem) FilterValue() string { return i.category.Name }
func (i categoryItem) Title() string       { return i.category.Name }
func (i categoryItem) Description() string {
	desc := fmt.Sprintf("#%d", i.category.ID)
	if i.category.ImgURL != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.category.ImgURL)
	}
	return desc
}

func categoryItems(cats []models.Category) []list.Item {
	items := make([]list.Item, len(cats))
	for i, c := range cats {
		items[i] = categoryItem{category: c}
	}
	return items
}
