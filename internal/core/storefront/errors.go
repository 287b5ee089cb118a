package storefront

import "errors"

var (
	ErrNotLoggedIn          = errors.New("not logged in")
	ErrSessionExpired       = errors.New("session expired, please log in again")
	ErrBusy                 = errors.New("operation already in progress")
	ErrNotEditing           = errors.New("no item is being edited")
	ErrItemNotInCatalog     = errors.New("item not in catalog")
	ErrInvalidRestockAmount = errors.New("enter a valid restock amount")
)
