package ws

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_CreateRoom(t *testing.T) {
	req := require.New(t)

	var r createRoomRequest
	req.NoError(decode(json.RawMessage(`{"displayName":"Alice"}`), &r))
	req.Equal("Alice", r.DisplayName)

	req.Error(decode(json.RawMessage(`{}`), &createRoomRequest{}), "display name is required")
	req.Error(decode(json.RawMessage(`{"displayName":""}`), &createRoomRequest{}))

	long := strings.Repeat("x", 33)
	req.Error(decode(json.RawMessage(`{"displayName":"`+long+`"}`), &createRoomRequest{}))
}

func TestDecode_JoinRoom(t *testing.T) {
	req := require.New(t)

	var r joinRoomRequest
	req.NoError(decode(json.RawMessage(`{"roomId":"AB12CD","displayName":"Bob"}`), &r))
	req.Equal("AB12CD", r.RoomID)

	req.Error(decode(json.RawMessage(`{"displayName":"Bob"}`), &joinRoomRequest{}))
	req.Error(decode(json.RawMessage(`{"roomId":"../etc","displayName":"Bob"}`), &joinRoomRequest{}))
}

func TestDecode_SendMessage(t *testing.T) {
	req := require.New(t)

	var r sendMessageRequest
	req.NoError(decode(json.RawMessage(`{"roomId":"AB12CD","text":"hi"}`), &r))

	req.Error(decode(json.RawMessage(`{"roomId":"AB12CD","text":""}`), &sendMessageRequest{}))
	req.Error(decode(json.RawMessage(`{"roomId":"AB12CD"}`), &sendMessageRequest{}))
}

func TestDecode_MalformedJSON(t *testing.T) {
	require.Error(t, decode(json.RawMessage(`{"roomId":`), &roomRequest{}))
}

func TestJoinRoomResponse_SpectatorHasNullRole(t *testing.T) {
	req := require.New(t)

	data, err := json.Marshal(joinRoomResponse{Success: true, RoomID: "AB12CD", IsSpectator: true})
	req.NoError(err)
	req.Contains(string(data), `"playerRole":null`)
}
