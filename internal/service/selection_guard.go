package service

import "github.com/Adaptanoide/Photo-Gallery-sub002/internal/models"

// guardMutable is the single capability check in front of every mutation
// path that touches an item's status or location. Selection ownership is
// inviolable: while SelectionID is set, only the selection builder may move
// the item.
func guardMutable(item *models.Item) error {
	if item == nil {
		return ErrItemNotFound
	}
	if item.SelectionOwned() {
		return ErrSelectionOwned
	}
	return nil
}
