package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomRegistry(t *testing.T) {
	rooms := NewRoomRegistry()
	a, b := &Client{id: "a"}, &Client{id: "b"}

	assert.True(t, rooms.Join(1, a))
	assert.False(t, rooms.Join(1, a))
	assert.True(t, rooms.Join(1, b))
	assert.True(t, rooms.Join(2, a))

	assert.ElementsMatch(t, []*Client{a, b}, rooms.Members(1))
	assert.True(t, rooms.Contains(2, a))
	assert.False(t, rooms.Contains(2, b))

	rooms.Leave(1, b)
	assert.Equal(t, []*Client{a}, rooms.Members(1))

	assert.Equal(t, []uint{1, 2}, rooms.LeaveAll(a))
	assert.Empty(t, rooms.Members(1))
	assert.Empty(t, rooms.Members(2))
	assert.Empty(t, rooms.LeaveAll(a))
}
