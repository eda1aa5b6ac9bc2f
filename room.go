/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "time"

// Role marks what a player is allowed to do in a room. Exactly one player in a
// live room is the host.
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// Question is a single multiple-choice item. Field names match what the
// quiz generator produces and what browser clients already consume.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is the question list attached to a room at creation.
type Quiz struct {
	Questions []Question `json:"questions"`
}

func (q Quiz) lastIndex() int {
	return len(q.Questions) - 1
}

// Answers slots nobody has submitted yet hold noAnswer.
const noAnswer = -1

// Player holds the data we keep per connection inside a room
type Player struct {
	ConnID   string
	Name     string
	Role     Role
	Score    int
	Finished bool
	Answers  []int
}

func (p *Player) setAnswer(index, answer int) {
	for len(p.Answers) <= index {
		p.Answers = append(p.Answers, noAnswer)
	}
	p.Answers[index] = answer
}

type Room struct {
	Code      string
	Quiz      Quiz
	Started   bool
	Players   []*Player
	CreatedAt time.Time
}

func (r *Room) playerByConn(connID string) *Player {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// names returns display names in join order.
func (r *Room) names() []string {
	names := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		names = append(names, p.Name)
	}
	return names
}

func (r *Room) removePlayer(connID string) bool {
	dst := r.Players[:0]
	removed := false
	for _, p := range r.Players {
		if p.ConnID == connID {
			removed = true
			continue
		}
		dst = append(dst, p)
	}
	// Clear the tail so dropped players can be collected.
	for i := len(dst); i < len(r.Players); i++ {
		r.Players[i] = nil
	}
	r.Players = dst
	return removed
}
