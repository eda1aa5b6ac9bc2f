/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    ClientMessage
		wantErr bool
	}{
		{
			name:  "create room",
			frame: `{"type":"create-room","quizData":{"questions":[{"question":"q","options":["a","b"],"correctAnswer":1}]}}`,
			want: ClientMessage{
				Type: msgCreateRoom,
				QuizData: &Quiz{Questions: []Question{
					{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: 1},
				}},
			},
		},
		{
			name:  "join room normalizes code",
			frame: `{"type":"join-room","roomId":"  abcd1234 ","username":"Alice"}`,
			want:  ClientMessage{Type: msgJoinRoom, RoomID: "ABCD1234", Username: "Alice"},
		},
		{
			name:  "join room without code",
			frame: `{"type":"join-room","username":"Alice"}`,
			want:  ClientMessage{Type: msgJoinRoom, Username: "Alice"},
		},
		{
			name:  "user list",
			frame: `{"type":"get-user-list","roomId":"ABCD1234"}`,
			want:  ClientMessage{Type: msgGetUserList, RoomID: "ABCD1234"},
		},
		{
			name:  "room state",
			frame: `{"type":"get-room-state","roomId":"ABCD1234"}`,
			want:  ClientMessage{Type: msgGetRoomState, RoomID: "ABCD1234"},
		},
		{
			name:  "start quiz without quiz data",
			frame: `{"type":"start-quiz","roomId":"ABCD1234"}`,
			want:  ClientMessage{Type: msgStartQuiz, RoomID: "ABCD1234"},
		},
		{
			name:  "submit answer zero values",
			frame: `{"type":"submit-answer","roomId":"ABCD1234","questionIndex":0,"answer":0}`,
			want:  ClientMessage{Type: msgSubmitAnswer, RoomID: "ABCD1234", QuestionIndex: intPtr(0), Answer: intPtr(0)},
		},
		{name: "not json", frame: `hello`, wantErr: true},
		{name: "unknown type", frame: `{"type":"kick","roomId":"ABCD1234"}`, wantErr: true},
		{name: "missing type", frame: `{"roomId":"ABCD1234"}`, wantErr: true},
		{name: "create room without quiz", frame: `{"type":"create-room"}`, wantErr: true},
		{name: "create room with empty quiz", frame: `{"type":"create-room","quizData":{"questions":[]}}`, wantErr: true},
		{name: "create room with wrong shape", frame: `{"type":"create-room","quizData":"quiz"}`, wantErr: true},
		{name: "submit without index", frame: `{"type":"submit-answer","roomId":"ABCD1234","answer":1}`, wantErr: true},
		{name: "submit without answer", frame: `{"type":"submit-answer","roomId":"ABCD1234","questionIndex":1}`, wantErr: true},
		{name: "submit negative index", frame: `{"type":"submit-answer","roomId":"ABCD1234","questionIndex":-1,"answer":1}`, wantErr: true},
		{name: "submit negative answer", frame: `{"type":"submit-answer","roomId":"ABCD1234","questionIndex":1,"answer":-2}`, wantErr: true},
		{name: "submit string answer", frame: `{"type":"submit-answer","roomId":"ABCD1234","questionIndex":1,"answer":"b"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeClientMessage([]byte(tt.frame))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorMessageFor(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorMessage
	}{
		{ErrRoomNotFound, ErrorMessage{Type: msgError, Code: "room_not_found", Message: "Room not found."}},
		{ErrRoomAlreadyStarted, ErrorMessage{Type: msgError, Code: "room_already_started", Message: "Quiz has already started."}},
		{ErrRoomCreationFailed, ErrorMessage{Type: msgError, Code: "room_creation_failed", Message: "Could not create a room. Please try again."}},
		{ErrUnknownPlayer, ErrorMessage{Type: msgError, Code: "internal", Message: "Something went wrong."}},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessageFor(tt.err))
		})
	}
}
