/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T, path string) *Ledger {
	t.Helper()

	l, err := openLedger(&Config{}, path)
	require.NoError(t, err)

	return l
}

func TestLedger_FlushesOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	l := openTestLedger(t, path)
	ctx, cancel := context.WithCancel(context.Background())

	want := []FinishedResult{
		{RoomCode: "ABCD1234", Player: "Alice", Score: 2, Total: 2, FinishedAt: time.UnixMilli(1_700_000_001_000)},
		{RoomCode: "ABCD1234", Player: "Bob", Score: 1, Total: 2, FinishedAt: time.UnixMilli(1_700_000_002_000)},
		{RoomCode: "WXYZ9876", Player: "Carol", Score: 0, Total: 3, FinishedAt: time.UnixMilli(1_700_000_003_000)},
	}
	for _, r := range want {
		l.Record(r)
	}

	go l.run(ctx)
	cancel()
	require.NoError(t, l.Close())

	// Reopen to prove the rows reached disk.
	reopened := openTestLedger(t, path)
	stopped, stop := context.WithCancel(context.Background())
	stop()
	go reopened.run(stopped)
	defer reopened.Close()

	got, err := reopened.Results(context.Background(), "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, []FinishedResult{want[1], want[0]}, got)

	got, err = reopened.Results(context.Background(), "NOPE0000")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLedger_RecordDropsWhenFull(t *testing.T) {
	l := openTestLedger(t, filepath.Join(t.TempDir(), "results.db"))

	for i := 0; i < ledgerQueueSize+10; i++ {
		l.Record(FinishedResult{RoomCode: "ABCD1234", Player: "Spammer"})
	}

	assert.Len(t, l.queue, ledgerQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go l.run(ctx)
	require.NoError(t, l.Close())
}

func TestServeResults(t *testing.T) {
	l := openTestLedger(t, filepath.Join(t.TempDir(), "results.db"))
	ctx, cancel := context.WithCancel(context.Background())
	go l.run(ctx)
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, l.Close())
	})

	l.write(FinishedResult{RoomCode: "ABCD1234", Player: "Alice", Score: 3, Total: 4, FinishedAt: time.UnixMilli(1_700_000_000_000)})

	errs := make(chan error, 1)
	handler := serveResults(&Config{}, l, errs)

	tests := []struct {
		name string
		code string
		want int
	}{
		{name: "known room", code: "ABCD1234", want: 1},
		{name: "lowercase code", code: "abcd1234", want: 1},
		{name: "unknown room", code: "ZZZZZZZZ", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/rooms/"+tt.code+"/results", nil)

			handler(w, r, httprouter.Params{{Key: "code", Value: tt.code}})

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

			var got []FinishedResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Len(t, got, tt.want)
			if tt.want == 0 {
				assert.JSONEq(t, `[]`, w.Body.String())
			}
		})
	}

	assert.Empty(t, errs)
}

func TestStopWorkers_WritesLastResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ledger := openTestLedger(t, path)

	roomsCtx, stopRooms := context.WithCancel(context.Background())
	ledgerCtx, stopLedger := context.WithCancel(context.Background())

	co := newCoordinator(&Config{sendBuffer: 8}, NewRegistry(false), ledger)
	go co.Run(roomsCtx)
	go ledger.run(ledgerCtx)

	host := &Client{id: "host", send: make(chan any, 8)}
	require.True(t, co.Register(host))
	require.True(t, co.Submit(host, ClientMessage{Type: msgCreateRoom, QuizData: &twoQuestionQuiz}))

	created, ok := (<-host.send).(RoomCreatedMessage)
	require.True(t, ok)

	require.True(t, co.Submit(host, ClientMessage{Type: msgStartQuiz, RoomID: created.RoomCode}))
	require.True(t, co.Submit(host, ClientMessage{
		Type:          msgSubmitAnswer,
		RoomID:        created.RoomCode,
		QuestionIndex: intPtr(1),
		Answer:        intPtr(0),
	}))

	// Shut down while the finishing answer may still be in the coordinator.
	require.NoError(t, stopWorkers(co, stopRooms, ledger, stopLedger))

	reopened := openTestLedger(t, path)
	stopped, stop := context.WithCancel(context.Background())
	stop()
	go reopened.run(stopped)
	defer reopened.Close()

	got, err := reopened.Results(context.Background(), created.RoomCode)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Host", got[0].Player)
	assert.Equal(t, 1, got[0].Score)
	assert.Equal(t, 2, got[0].Total)
}
