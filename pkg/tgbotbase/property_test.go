package tgbotbase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPropertyLookupOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPropertyStorage()

	v, err := s.GetProperty(ctx, "nordesteProvince", 10, 20)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.SetPropertyForChat(ctx, "nordesteProvince", 20, "Bahia"))
	v, _ = s.GetProperty(ctx, "nordesteProvince", 10, 20)
	assert.Equal(t, "Bahia", v)

	require.NoError(t, s.SetPropertyForUser(ctx, "nordesteProvince", 10, "Sergipe"))
	v, _ = s.GetProperty(ctx, "nordesteProvince", 10, 20)
	assert.Equal(t, "Sergipe", v)
	v, _ = s.GetProperty(ctx, "nordesteProvince", 11, 20)
	assert.Equal(t, "Bahia", v)

	require.NoError(t, s.SetPropertyForUserInChat(ctx, "nordesteProvince", 10, 20, "Piauí"))
	v, _ = s.GetProperty(ctx, "nordesteProvince", 10, 20)
	assert.Equal(t, "Piauí", v)
}

func TestMemoryEveryHavingProperty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPropertyStorage()
	require.NoError(t, s.SetPropertyForChat(ctx, "nordesteTime", 2, "9h"))
	require.NoError(t, s.SetPropertyForChat(ctx, "nordesteTime", 1, "8h"))
	require.NoError(t, s.SetPropertyForChat(ctx, "other", 3, 42))

	props, err := s.GetEveryHavingProperty(ctx, "nordesteTime")
	require.NoError(t, err)
	assert.Equal(t, []PropertyValue{
		{Value: "8h", Chat: 1},
		{Value: "9h", Chat: 2},
	}, props)

	other, _ := s.GetEveryHavingProperty(ctx, "other")
	require.Len(t, other, 1)
	assert.Equal(t, "42", other[0].Value)
}

func TestRedisPropertyKey(t *testing.T) {
	key := redisPropertyKey("nordesteDate", 5, -100200)
	assert.Equal(t, "tg:property:nordesteDate:5:-100200", key)

	user, chat, err := parseRedisPropertyKey(key)
	require.NoError(t, err)
	assert.Equal(t, UserID(5), user)
	assert.Equal(t, ChatID(-100200), chat)

	_, _, err = parseRedisPropertyKey("tg:property:x:5")
	assert.Error(t, err)
	_, _, err = parseRedisPropertyKey("tg:property:x:a:5")
	assert.Error(t, err)

	assert.Panics(t, func() { redisPropertyKey("bad:name", 1, 1) })
}

func TestUniqueStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueStringSlice([]string{"a", "b", "a", "c", "b"}))
}
