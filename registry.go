/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 8
	maxCodeAttempts = 10
	hostName        = "Host"
)

// Registry owns every live room. It is not safe for concurrent use; the
// coordinator goroutine is its only caller.
type Registry struct {
	rooms  map[string]*Room
	byConn map[string]string // connection ID -> room code

	hostOnlyStart bool

	newCode func() (string, error)
	now     func() time.Time
}

func NewRegistry(hostOnlyStart bool) *Registry {
	return &Registry{
		rooms:         make(map[string]*Room),
		byConn:        make(map[string]string),
		hostOnlyStart: hostOnlyStart,
		newCode:       newRoomCode,
		now:           time.Now,
	}
}

// newRoomCode generates a crypto-random room code. Collisions are checked by
// the caller.
func newRoomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	out := make([]byte, codeLength)
	for i := range out {
		out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}

	return string(out), nil
}

func placeholderName() string {
	return "Player-" + strings.ToUpper(uuid.NewString()[:4])
}

// Create opens a new room holding a single host player bound to connID. If
// connID was in another room it leaves that room first.
func (r *Registry) Create(connID string, quiz Quiz) (string, error) {
	var code string

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate, err := r.newCode()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRoomCreationFailed, err)
		}

		if _, exists := r.rooms[candidate]; !exists {
			code = candidate
			break
		}
	}

	if code == "" {
		return "", fmt.Errorf("%w: no free code after %d attempts", ErrRoomCreationFailed, maxCodeAttempts)
	}

	r.RemoveByConn(connID)

	r.rooms[code] = &Room{
		Code: code,
		Quiz: quiz,
		Players: []*Player{{
			ConnID: connID,
			Name:   hostName,
			Role:   RoleHost,
		}},
		CreatedAt: r.now(),
	}
	r.byConn[connID] = code

	return code, nil
}

// Join appends a player to the room and returns the updated name list. A
// connection already in this waiting room is not added twice.
func (r *Registry) Join(code, connID, name string) ([]string, error) {
	room, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	if room.Started {
		return nil, ErrRoomAlreadyStarted
	}

	if room.playerByConn(connID) != nil {
		return room.names(), nil
	}

	r.RemoveByConn(connID)

	name = strings.TrimSpace(name)
	if name == "" {
		name = placeholderName()
	}

	room.Players = append(room.Players, &Player{
		ConnID: connID,
		Name:   name,
		Role:   RolePlayer,
	})
	r.byConn[connID] = code

	return room.names(), nil
}

func (r *Registry) Players(code string) ([]string, error) {
	room, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room.names(), nil
}

// Start marks the room as started. Repeated starts are allowed and leave the
// room started.
func (r *Registry) Start(code, connID string) (*Room, error) {
	room, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	if r.hostOnlyStart {
		p := room.playerByConn(connID)
		if p == nil || p.Role != RoleHost {
			return nil, ErrNotHost
		}
	}

	room.Started = true

	return room, nil
}

// RemoveByConn drops the player owned by connID, deleting its room when that
// leaves it empty. A departing host hands the role to the next player. ok is false when the connection owned no player.
func (r *Registry) RemoveByConn(connID string) (code string, deleted bool, ok bool) {
	code, ok = r.byConn[connID]
	if !ok {
		return "", false, false
	}
	delete(r.byConn, connID)

	room, exists := r.rooms[code]
	if !exists {
		return code, true, true
	}

	leaving := room.playerByConn(connID)
	room.removePlayer(connID)

	if len(room.Players) == 0 {
		delete(r.rooms, code)
		return code, true, true
	}

	// The earliest remaining player inherits the room.
	if leaving != nil && leaving.Role == RoleHost {
		room.Players[0].Role = RoleHost
	}

	return code, false, true
}

func (r *Registry) Room(code string) (*Room, bool) {
	room, ok := r.rooms[code]
	return room, ok
}

func (r *Registry) CodeByConn(connID string) (string, bool) {
	code, ok := r.byConn[connID]
	return code, ok
}

func (r *Registry) Len() int {
	return len(r.rooms)
}
