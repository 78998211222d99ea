package tgbotbase

import "context"

type PropertyValue struct {
	Value string
	User  UserID
	Chat  ChatID
}

// PropertyStorage keeps string settings per user, per chat or per user in a chat.
// GetProperty looks them up in this order: user in chat, user, chat; "" when none is set.
type PropertyStorage interface {
	GetProperty(ctx context.Context, name string, user UserID, chat ChatID) (string, error)
	SetPropertyForUser(ctx context.Context, name string, user UserID, value interface{}) error
	SetPropertyForChat(ctx context.Context, name string, chat ChatID, value interface{}) error
	SetPropertyForUserInChat(ctx context.Context, name string, user UserID, chat ChatID, value interface{}) error
	GetEveryHavingProperty(ctx context.Context, name string) ([]PropertyValue, error)
}

// lookupOrder lists (user, chat) pairs checked by GetProperty
func lookupOrder(user UserID, chat ChatID) [][2]int64 {
	return [][2]int64{
		{int64(user), int64(chat)},
		{int64(user), int64(user)},
		{0, int64(chat)},
	}
}
