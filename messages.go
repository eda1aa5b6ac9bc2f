/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound message types
const (
	msgCreateRoom   = "create-room"
	msgJoinRoom     = "join-room"
	msgGetUserList  = "get-user-list"
	msgGetRoomState = "get-room-state"
	msgStartQuiz    = "start-quiz"
	msgSubmitAnswer = "submit-answer"
)

// Outbound message types
const (
	msgRoomCreated = "room-created"
	msgUserJoined  = "user-joined"
	msgRoomJoined  = "room-joined"
	msgUserList    = "user-list"
	msgRoomState   = "room-state"
	msgQuizStart   = "quiz-start"
	msgUserScore   = "user-score"
	msgQuizResult  = "quiz-result"
	msgError       = "error"
)

// Messages coming from clients
type ClientMessage struct {
	Type          string `json:"type"`                    // one of the inbound types above
	RoomID        string `json:"roomId,omitempty"`        // everything but create-room
	Username      string `json:"username,omitempty"`      // join-room
	QuizData      *Quiz  `json:"quizData,omitempty"`      // create-room / start-quiz
	QuestionIndex *int   `json:"questionIndex,omitempty"` // submit-answer
	Answer        *int   `json:"answer,omitempty"`        // submit-answer
}

// decodeClientMessage parses and validates a single frame. Anything returned
// without error is safe to hand to the coordinator.
func decodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	msg.RoomID = normalizeCode(msg.RoomID)

	if err := msg.validate(); err != nil {
		return ClientMessage{}, err
	}

	return msg, nil
}

// normalizeCode lets players type room codes in any case.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (m ClientMessage) validate() error {
	switch m.Type {
	case msgCreateRoom:
		if m.QuizData == nil || len(m.QuizData.Questions) == 0 {
			return fmt.Errorf("%w: %s without questions", ErrInvalidMessage, m.Type)
		}
	case msgJoinRoom, msgGetUserList, msgGetRoomState, msgStartQuiz:
		// A blank room ID is reported to the client as an unknown room.
	case msgSubmitAnswer:
		if m.QuestionIndex == nil || *m.QuestionIndex < 0 {
			return fmt.Errorf("%w: %s needs a non-negative questionIndex", ErrInvalidMessage, m.Type)
		}
		if m.Answer == nil || *m.Answer < 0 {
			return fmt.Errorf("%w: %s needs a non-negative answer", ErrInvalidMessage, m.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}

	return nil
}

// Sent to the creator once their room exists
type RoomCreatedMessage struct {
	Type     string `json:"type"` // "room-created"
	RoomCode string `json:"roomCode"`
}

// Broadcast to the whole room after a join
type UserJoinedMessage struct {
	Type  string   `json:"type"` // "user-joined"
	Users []string `json:"users"`
}

// RoomJoinedMessage is sent only to the joining connection, carrying the quiz
// so it can render as soon as the host starts.
type RoomJoinedMessage struct {
	Type     string `json:"type"` // "room-joined"
	RoomCode string `json:"roomCode"`
	QuizData Quiz   `json:"quizData"`
}

type UserListMessage struct {
	Type  string   `json:"type"` // "user-list"
	Users []string `json:"users"`
}

// RoomStateMessage lets a reconnecting client catch up on everything it may
// have missed.
type RoomStateMessage struct {
	Type        string             `json:"type"` // "room-state"
	RoomCode    string             `json:"roomCode"`
	Started     bool               `json:"started"`
	Users       []string           `json:"users"`
	QuizData    Quiz               `json:"quizData"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type QuizStartMessage struct {
	Type     string `json:"type"` // "quiz-start"
	QuizData Quiz   `json:"quizData"`
}

type UserScoreMessage struct {
	Type        string             `json:"type"` // "user-score"
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type QuizResultMessage struct {
	Type  string `json:"type"` // "quiz-result"
	Score int    `json:"score"`
	Total int    `json:"total"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}
