package tasks

import (
	"slices"

	"github.com/desertthunder/lbsync/internal/models"
)

// Diff returns the films to add (local only) and to remove (remote only), each sorted.
//
// Applying the delta to remote yields exactly local, so a second Diff after a successful update is empty.
func Diff(local, remote IDSet) models.Delta {
	delta := models.Delta{ToAdd: []string{}, ToRemove: []string{}}
	for id := range local {
		if !remote.Has(id) {
			delta.ToAdd = append(delta.ToAdd, id)
		}
	}
	for id := range remote {
		if !local.Has(id) {
			delta.ToRemove = append(delta.ToRemove, id)
		}
	}
	slices.Sort(delta.ToAdd)
	slices.Sort(delta.ToRemove)
	return delta
}
