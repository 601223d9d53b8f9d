package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonhowl/onenight/internal/game"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func startTestServer(t *testing.T) string {
	t.Helper()

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	logger := log.New(io.Discard)
	srv := NewServer(addr, logger)
	svc := NewGameService(srv, game.DefaultConfig(), 30*time.Minute, 7, quartz.NewReal(), logger)
	srv.SetGameService(svc)

	go func() { _ = srv.Start() }()
	t.Cleanup(func() {
		svc.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	// Wait for the health endpoint to come up.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return addr
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
	return ""
}

// testClient is a WebSocket client that buffers every received message.
type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	msgs chan *Message
}

func newTestClient(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}

	c := &testClient{t: t, conn: conn, msgs: make(chan *Message, 64)}
	go func() {
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				close(c.msgs)
				return
			}
			c.msgs <- &msg
		}
	}()

	t.Cleanup(func() { _ = conn.Close() })
	return c
}

func (c *testClient) send(messageType MessageType, data interface{}) {
	c.t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// waitFor discards messages until one of the wanted type arrives.
func (c *testClient) waitFor(messageType MessageType) *Message {
	c.t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-c.msgs:
			if !ok {
				c.t.Fatalf("connection closed waiting for %s", messageType)
			}
			if msg.Type == messageType {
				return msg
			}
		case <-timeout:
			c.t.Fatalf("timed out waiting for %s", messageType)
		}
	}
}

func decodeInto(t *testing.T, msg *Message, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(msg.Data, v))
}

func TestIntegrationLobbyAndDeal(t *testing.T) {
	addr := startTestServer(t)

	alice := newTestClient(t, addr)
	alice.send(MessageTypeCreateGame, CreateGameData{PlayerName: "alice"})

	var created GameCreatedData
	decodeInto(t, alice.waitFor(MessageTypeGameCreated), &created)
	require.NotEmpty(t, created.Code)
	require.NotEmpty(t, created.PlayerID)
	require.Len(t, created.Players, 1)

	bob := newTestClient(t, addr)
	bob.send(MessageTypeJoinGame, JoinGameData{Code: created.Code, PlayerName: "bob"})
	var joined GameJoinedData
	decodeInto(t, bob.waitFor(MessageTypeGameJoined), &joined)
	assert.Equal(t, created.Code, joined.Code)

	// The creator hears about the new player.
	var playerJoined PlayerJoinedData
	decodeInto(t, alice.waitFor(MessageType(game.EventTypePlayerJoined)), &playerJoined)
	assert.Equal(t, "bob", playerJoined.Player.Name)
	assert.Equal(t, 2, playerJoined.PlayerCount)

	carol := newTestClient(t, addr)
	carol.send(MessageTypeJoinGame, JoinGameData{Code: created.Code, PlayerName: "carol"})
	carol.waitFor(MessageTypeGameJoined)

	// Listing shows one joinable game with three players.
	bob.send(MessageTypeListGames, struct{}{})
	var list GameListData
	decodeInto(t, bob.waitFor(MessageTypeGameList), &list)
	require.Len(t, list.Games, 1)
	assert.Equal(t, 3, list.Games[0].PlayerCount)
	assert.True(t, list.Games[0].Joinable)

	// Start the game: everyone gets a private role.
	alice.send(MessageTypeStartGame, struct{}{})
	clients := []*testClient{alice, bob, carol}
	for _, c := range clients {
		var assigned RoleAssignedData
		decodeInto(t, c.waitFor(MessageType(game.EventTypeRoleAssigned)), &assigned)
		assert.NotEmpty(t, assigned.Role.Name)
		assert.NotEmpty(t, assigned.Description)
	}

	// All confirmations in, the night begins and the first turn is announced.
	for _, c := range clients {
		c.send(MessageTypeConfirmRole, struct{}{})
	}
	for _, c := range clients {
		c.waitFor(MessageType(game.EventTypeNightStarted))
		c.waitFor(MessageType(game.EventTypeRoleTurn))
	}
}

func TestIntegrationErrors(t *testing.T) {
	addr := startTestServer(t)

	client := newTestClient(t, addr)

	// Joining a game that doesn't exist.
	client.send(MessageTypeJoinGame, JoinGameData{Code: "zzzzzz", PlayerName: "alice"})
	var errData ErrorData
	decodeInto(t, client.waitFor(MessageTypeError), &errData)
	assert.Equal(t, "join_failed", errData.Code)

	// Acting without being in a game.
	client.send(MessageTypeStartGame, struct{}{})
	decodeInto(t, client.waitFor(MessageTypeError), &errData)
	assert.Equal(t, "not_in_game", errData.Code)

	// An unknown message type is reported, not dropped.
	client.send(MessageType("warp_drive"), struct{}{})
	decodeInto(t, client.waitFor(MessageTypeError), &errData)
	assert.Equal(t, "unknown_message_type", errData.Code)
}
