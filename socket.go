/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	maxMessageSize = 1 << 20
	writeWait      = 10 * time.Second
)

type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan any
	remote string
}

func newClient(conn *websocket.Conn, buffer int, remote string) *Client {
	return &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan any, buffer),
		remote: remote,
	}
}

// newUpgrader accepts any origin unless --allowed-origins is set, in which
// case the Origin host must match one of the listed hosts exactly.
func newUpgrader(cfg *Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(cfg.allowedOrigins) == 0 {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			u, err := url.Parse(origin)
			if err != nil {
				return false
			}

			return slices.ContainsFunc(cfg.allowedOrigins, func(allowed string) bool {
				return strings.EqualFold(allowed, u.Host)
			})
		},
	}
}

func serveWS(cfg *Config, co *Coordinator) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Upgrading connection from %s: %v", realIP(r), err)
			return
		}

		client := newClient(conn, cfg.sendBuffer, realIP(r))

		if !co.Register(client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(cfg, co)
	}
}

// readPump validates each frame before it reaches the coordinator. Frames
// that fail validation are dropped; the connection stays open.
func (c *Client) readPump(cfg *Config, co *Coordinator) {
	defer func() {
		co.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := decodeClientMessage(data)
		if err != nil {
			logf(cfg, "SOCKS: Rejected frame from %s: %v", c.id, err)
			continue
		}

		if !co.Submit(c, msg) {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
