/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"time"
)

type inbound struct {
	client *Client
	msg    ClientMessage
}

// ResultRecorder receives every finished player's result. Record must not
// block.
type ResultRecorder interface {
	Record(FinishedResult)
}

// Coordinator runs every room. A single goroutine (Run) owns the registry and
// the client table; everything else talks to it over channels, so handlers
// run one at a time and to completion.
type Coordinator struct {
	cfg     *Config
	rooms   *Registry
	clients map[string]*Client
	results ResultRecorder

	register chan *Client
	unreg    chan *Client
	messages chan inbound
	queries  chan func(*Registry)
	done     chan struct{}
}

func newCoordinator(cfg *Config, rooms *Registry, results ResultRecorder) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		rooms:    rooms,
		clients:  make(map[string]*Client),
		results:  results,
		register: make(chan *Client),
		unreg:    make(chan *Client),
		messages: make(chan inbound),
		queries:  make(chan func(*Registry)),
		done:     make(chan struct{}),
	}
}

func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case cl := <-c.register:
			c.handleRegister(cl)

		case cl := <-c.unreg:
			c.handleUnregister(cl)

		case in := <-c.messages:
			c.handleMessage(in.client, in.msg)

		case fn := <-c.queries:
			fn(c.rooms)

		case <-ctx.Done():
			c.closeAll()
			return
		}
	}
}

// Register adds a client. It returns false once the coordinator has stopped.
func (c *Coordinator) Register(cl *Client) bool {
	select {
	case c.register <- cl:
		return true
	case <-c.done:
		return false
	}
}

func (c *Coordinator) Unregister(cl *Client) {
	select {
	case c.unreg <- cl:
	case <-c.done:
	}
}

// Submit hands a validated message to the coordinator. It returns false once
// the coordinator has stopped.
func (c *Coordinator) Submit(cl *Client, msg ClientMessage) bool {
	select {
	case c.messages <- inbound{client: cl, msg: msg}:
		return true
	case <-c.done:
		return false
	}
}

// Inspect runs fn on the coordinator goroutine and waits for it to finish.
// fn must not keep references to rooms after it returns.
func (c *Coordinator) Inspect(ctx context.Context, fn func(*Registry)) error {
	finished := make(chan struct{})

	select {
	case c.queries <- func(r *Registry) { fn(r); close(finished) }:
	case <-c.done:
		return errors.New("coordinator stopped")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) handleRegister(cl *Client) {
	c.clients[cl.id] = cl

	logf(c.cfg, "SOCKS: Connection %s opened from %s", cl.id, cl.remote)
}

func (c *Coordinator) handleUnregister(cl *Client) {
	if current, ok := c.clients[cl.id]; ok && current == cl {
		delete(c.clients, cl.id)
		close(cl.send)
	}

	logf(c.cfg, "SOCKS: Connection %s closed", cl.id)

	c.leave(cl.id)
}

func (c *Coordinator) handleMessage(cl *Client, msg ClientMessage) {
	if current, ok := c.clients[cl.id]; !ok || current != cl {
		return
	}

	switch msg.Type {
	case msgCreateRoom:
		c.createRoom(cl, msg)
	case msgJoinRoom:
		c.joinRoom(cl, msg)
	case msgGetUserList:
		c.userList(cl, msg)
	case msgGetRoomState:
		c.roomState(cl, msg)
	case msgStartQuiz:
		c.startQuiz(cl, msg)
	case msgSubmitAnswer:
		c.submitAnswer(cl, msg)
	}
}

func (c *Coordinator) createRoom(cl *Client, msg ClientMessage) {
	prev, hadPrev := c.rooms.CodeByConn(cl.id)

	code, err := c.rooms.Create(cl.id, *msg.QuizData)
	if err != nil {
		logf(c.cfg, "ERROR: Creating room for %s: %v", cl.id, err)
		c.send(cl, errorMessageFor(err))
		return
	}

	if hadPrev {
		c.announceDeparture(prev)
	}

	logf(c.cfg, "ROOMS: Created room %s with %d questions for %s", code, len(msg.QuizData.Questions), cl.id)

	c.send(cl, RoomCreatedMessage{
		Type:     msgRoomCreated,
		RoomCode: code,
	})
}

func (c *Coordinator) joinRoom(cl *Client, msg ClientMessage) {
	prev, hadPrev := c.rooms.CodeByConn(cl.id)

	names, err := c.rooms.Join(msg.RoomID, cl.id, msg.Username)
	if err != nil {
		logf(c.cfg, "ROOMS: %s could not join %q: %v", cl.id, msg.RoomID, err)
		c.send(cl, errorMessageFor(err))
		return
	}

	if hadPrev && prev != msg.RoomID {
		c.announceDeparture(prev)
	}

	room, _ := c.rooms.Room(msg.RoomID)

	logf(c.cfg, "ROOMS: Player %q joined %s", names[len(names)-1], room.Code)

	c.broadcast(room, UserJoinedMessage{
		Type:  msgUserJoined,
		Users: names,
	})

	c.send(cl, RoomJoinedMessage{
		Type:     msgRoomJoined,
		RoomCode: room.Code,
		QuizData: room.Quiz,
	})

	c.broadcastLeaderboard(room)
}

func (c *Coordinator) userList(cl *Client, msg ClientMessage) {
	names, err := c.rooms.Players(msg.RoomID)
	if err != nil {
		c.send(cl, errorMessageFor(err))
		return
	}

	c.send(cl, UserListMessage{
		Type:  msgUserList,
		Users: names,
	})
}

func (c *Coordinator) roomState(cl *Client, msg ClientMessage) {
	room, ok := c.rooms.Room(msg.RoomID)
	if !ok {
		c.send(cl, errorMessageFor(ErrRoomNotFound))
		return
	}

	c.send(cl, RoomStateMessage{
		Type:        msgRoomState,
		RoomCode:    room.Code,
		Started:     room.Started,
		Users:       room.names(),
		QuizData:    room.Quiz,
		Leaderboard: Leaderboard(room),
	})
}

// startQuiz broadcasts the quiz attached at creation; a quiz carried by the
// start message itself is ignored so scoring and display never diverge.
func (c *Coordinator) startQuiz(cl *Client, msg ClientMessage) {
	room, err := c.rooms.Start(msg.RoomID, cl.id)
	if err != nil {
		logf(c.cfg, "ROOMS: Ignored start of %q by %s: %v", msg.RoomID, cl.id, err)
		return
	}

	logf(c.cfg, "ROOMS: Started %s with %d players", room.Code, len(room.Players))

	c.broadcast(room, QuizStartMessage{
		Type:     msgQuizStart,
		QuizData: room.Quiz,
	})
}

func (c *Coordinator) submitAnswer(cl *Client, msg ClientMessage) {
	room, ok := c.rooms.Room(msg.RoomID)
	if !ok || !room.Started {
		return
	}

	result, err := room.SubmitAnswer(cl.id, *msg.QuestionIndex, *msg.Answer)
	if err != nil {
		logf(c.cfg, "ROOMS: Ignored answer from %s in %s: %v", cl.id, room.Code, err)
		return
	}

	if result != nil {
		player := room.playerByConn(cl.id)

		logf(c.cfg, "ROOMS: Player %q finished %s with %d/%d", player.Name, room.Code, result.Score, result.Total)

		c.send(cl, QuizResultMessage{
			Type:  msgQuizResult,
			Score: result.Score,
			Total: result.Total,
		})

		if c.results != nil {
			c.results.Record(FinishedResult{
				RoomCode:   room.Code,
				Player:     player.Name,
				Score:      result.Score,
				Total:      result.Total,
				FinishedAt: time.Now(),
			})
		}
	}

	c.broadcastLeaderboard(room)
}

// leave removes whatever player connID owned and tells the rest of the room.
func (c *Coordinator) leave(connID string) {
	code, deleted, ok := c.rooms.RemoveByConn(connID)
	if !ok {
		return
	}

	if deleted {
		logf(c.cfg, "ROOMS: Closed empty room %s", code)
		return
	}

	c.announceDeparture(code)
}

func (c *Coordinator) announceDeparture(code string) {
	room, ok := c.rooms.Room(code)
	if !ok {
		logf(c.cfg, "ROOMS: Closed empty room %s", code)
		return
	}

	c.broadcast(room, UserListMessage{
		Type:  msgUserList,
		Users: room.names(),
	})

	c.broadcastLeaderboard(room)
}

func (c *Coordinator) broadcastLeaderboard(room *Room) {
	c.broadcast(room, UserScoreMessage{
		Type:        msgUserScore,
		Leaderboard: Leaderboard(room),
	})
}

func (c *Coordinator) broadcast(room *Room, msg any) {
	for _, p := range room.Players {
		if cl, ok := c.clients[p.ConnID]; ok {
			c.send(cl, msg)
		}
	}
}

// send never blocks. A client too slow to drain its buffer is dropped; its
// connection closes and the usual unregister path removes its player.
func (c *Coordinator) send(cl *Client, msg any) {
	if current, ok := c.clients[cl.id]; !ok || current != cl {
		return
	}

	select {
	case cl.send <- msg:
	default:
		logf(c.cfg, "SOCKS: Dropping slow connection %s", cl.id)
		delete(c.clients, cl.id)
		close(cl.send)
	}
}

func (c *Coordinator) closeAll() {
	for id, cl := range c.clients {
		delete(c.clients, id)
		close(cl.send)
	}
}
