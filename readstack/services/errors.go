package services

import "errors"

// Named operation failures. Handlers match these with errors.Is and map them
// to response codes; anything else from the store is a generic failure.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrQuestNotFound       = errors.New("quest not found")
	ErrQuestNotCompletable = errors.New("quest is not completed or was already claimed")
	ErrBadgeNotFound       = errors.New("badge not found")
	ErrItemNotFound        = errors.New("shop item not found")
	ErrItemInactive        = errors.New("shop item is not for sale")
	ErrAlreadyOwned        = errors.New("item already owned")
	ErrInsufficientPoints  = errors.New("not enough points")
	ErrOutOfStock          = errors.New("item is out of stock")
	ErrEquipNotOwned       = errors.New("item is not in the account's inventory")
	ErrUnknownMetric       = errors.New("unknown leaderboard metric")
	ErrInvalidTarget       = errors.New("target must be positive")
)
