/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomAlreadyStarted = errors.New("room already started")
	ErrRoomCreationFailed = errors.New("room creation failed")
	ErrNotHost            = errors.New("caller is not the room host")
	ErrUnknownPlayer      = errors.New("connection has no player in room")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrInvalidMessage     = errors.New("invalid message")
)

// errorMessageFor maps a coordinator error onto what the requesting client
// sees. The message text is what players have always been shown; the code is
// for programmatic clients.
func errorMessageFor(err error) ErrorMessage {
	msg := ErrorMessage{Type: msgError}

	switch {
	case errors.Is(err, ErrRoomNotFound):
		msg.Code, msg.Message = "room_not_found", "Room not found."
	case errors.Is(err, ErrRoomAlreadyStarted):
		msg.Code, msg.Message = "room_already_started", "Quiz has already started."
	case errors.Is(err, ErrRoomCreationFailed):
		msg.Code, msg.Message = "room_creation_failed", "Could not create a room. Please try again."
	default:
		msg.Code, msg.Message = "internal", "Something went wrong."
	}

	return msg
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
