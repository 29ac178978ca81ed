package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil status service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingStatusReporter)
	})

	t.Run("status only registers read tools", func(t *testing.T) {
		server, err := NewServer(&Ports{Status: &mockStatusReporter{}})
		require.NoError(t, err)
		assert.Equal(t, []string{"status", "pending"}, server.Tools())
	})

	t.Run("validator adds validate tool", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Status:    &mockStatusReporter{},
			Validator: &mockValidator{},
			Runs:      &mockRunHistory{},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"status", "pending", "validate"}, server.Tools())
	})
}

// connect runs server over an in-memory transport and returns a client session.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverT, clientT := mcp.NewInMemoryTransports()
	go func() { _ = server.Serve(ctx, serverT) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServer_Session(t *testing.T) {
	server, err := NewServer(&Ports{Status: newStatusReporter()})
	require.NoError(t, err)
	session := connect(t, server)
	ctx := context.Background()

	assert.Contains(t, session.InitializeResult().Instructions, "story/VOICE_01.xml")

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"status", "pending"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "pending",
		Arguments: map[string]any{"document": "story/VOICE_01.xml"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)

	read, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "scenetext://documents"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	assert.Contains(t, read.Contents[0].Text, "menu/arm9.xml")
}

func TestServer_ServeHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Status: &mockStatusReporter{}})
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.serveHTTP(ctx, ln) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunHTTP_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	server, err := NewServer(&Ports{Status: &mockStatusReporter{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), ln.Addr().String())
	assert.ErrorContains(t, err, "mcp listen")
}
