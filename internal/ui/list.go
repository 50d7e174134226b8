package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lbsync/internal/models"
)

var (
	_ list.Item = changeItem{}
)

type changeAction string

const (
	actionAdd     changeAction = "add"
	actionRemove  changeAction = "remove"
	actionDropped changeAction = "dropped"
)

// changeItem wraps one line of a [models.SyncReport] to implement [list.Item].
type changeItem struct {
	action changeAction
	title  string
	detail string
}

func (i changeItem) FilterValue() string { return i.title }
func (i changeItem) Title() string {
	switch i.action {
	case actionAdd:
		return styles.ok.Render("+ ") + i.title
	case actionRemove:
		return styles.err.Render("- ") + i.title
	default:
		return styles.warn.Render("? ") + i.title
	}
}
func (i changeItem) Description() string {
	return fmt.Sprintf("%s • %s", i.action, i.detail)
}

// changeItems flattens a report into list items: additions, removals, then dropped candidates.
func changeItems(report *models.SyncReport) []list.Item {
	items := make([]list.Item, 0, len(report.ToAdd)+len(report.ToRemove)+len(report.Dropped))
	for _, film := range report.ToAdd {
		items = append(items, changeItem{action: actionAdd, title: film.Label(), detail: film.ID})
	}
	for _, film := range report.ToRemove {
		items = append(items, changeItem{action: actionRemove, title: film.Label(), detail: film.ID})
	}
	for _, d := range report.Dropped {
		items = append(items, changeItem{action: actionDropped, title: d.Name, detail: d.Reason})
	}
	return items
}
