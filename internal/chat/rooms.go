package chat

import (
	"sort"
	"sync"
)

// RoomRegistry tracks which connections are in which group room.
type RoomRegistry interface {
	// Join adds c to the room and reports whether it was not already there.
	Join(groupID uint, c *Client) bool
	Leave(groupID uint, c *Client)
	// LeaveAll removes c from every room and returns the rooms it left.
	LeaveAll(c *Client) []uint
	Members(groupID uint) []*Client
	Contains(groupID uint, c *Client) bool
}

type memoryRooms struct {
	mu       sync.RWMutex
	rooms    map[uint]map[*Client]struct{}
	byClient map[*Client]map[uint]struct{}
}

// NewRoomRegistry returns a process-local registry.
func NewRoomRegistry() RoomRegistry {
	return &memoryRooms{
		rooms:    make(map[uint]map[*Client]struct{}),
		byClient: make(map[*Client]map[uint]struct{}),
	}
}

func (m *memoryRooms) Join(groupID uint, c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[groupID]
	if !ok {
		room = make(map[*Client]struct{})
		m.rooms[groupID] = room
	}
	if _, ok := room[c]; ok {
		return false
	}
	room[c] = struct{}{}

	joined, ok := m.byClient[c]
	if !ok {
		joined = make(map[uint]struct{})
		m.byClient[c] = joined
	}
	joined[groupID] = struct{}{}
	return true
}

func (m *memoryRooms) Leave(groupID uint, c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leave(groupID, c)
}

func (m *memoryRooms) leave(groupID uint, c *Client) {
	if room, ok := m.rooms[groupID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(m.rooms, groupID)
		}
	}
	if joined, ok := m.byClient[c]; ok {
		delete(joined, groupID)
		if len(joined) == 0 {
			delete(m.byClient, c)
		}
	}
}

func (m *memoryRooms) LeaveAll(c *Client) []uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups := make([]uint, 0, len(m.byClient[c]))
	for id := range m.byClient[c] {
		groups = append(groups, id)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	for _, id := range groups {
		m.leave(id, c)
	}
	return groups
}

func (m *memoryRooms) Members(groupID uint) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := make([]*Client, 0, len(m.rooms[groupID]))
	for c := range m.rooms[groupID] {
		members = append(members, c)
	}
	return members
}

func (m *memoryRooms) Contains(groupID uint, c *Client) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[groupID][c]
	return ok
}
