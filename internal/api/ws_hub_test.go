package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conectarPainel abre uma conexão de painel e faz o join na sala
func conectarPainel(t *testing.T, wsURL, pizzariaID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]string{
		"action":     "join",
		"pizzariaId": pizzariaID,
	}))
	return conn
}

func esperarMensagem(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(payload)
}

func semMensagem(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, payload, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("mensagem inesperada na sala errada: %s", payload)
	}
}

func montarHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	go hub.Run()

	r := gin.New()
	wsController := NewWSController(hub)
	r.GET("/ws", wsController.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHub_BroadcastSoNaSalaCerta(t *testing.T) {
	hub, wsURL := montarHub(t)

	painelA := conectarPainel(t, wsURL, "piz-a")
	painelB := conectarPainel(t, wsURL, "piz-b")

	require.Eventually(t, func() bool {
		return hub.ClientesSala("piz-a") == 1 && hub.ClientesSala("piz-b") == 1
	}, 3*time.Second, 20*time.Millisecond)

	hub.BroadcastSala("piz-a", []byte(`{"evento":"novo_pedido"}`))

	assert.Contains(t, esperarMensagem(t, painelA), "novo_pedido")
	semMensagem(t, painelB)
}

func TestHub_DoisPaineisNaMesmaSala(t *testing.T) {
	hub, wsURL := montarHub(t)

	painel1 := conectarPainel(t, wsURL, "piz-a")
	painel2 := conectarPainel(t, wsURL, "piz-a")

	require.Eventually(t, func() bool {
		return hub.ClientesSala("piz-a") == 2
	}, 3*time.Second, 20*time.Millisecond)

	hub.BroadcastSala("piz-a", []byte(`{"evento":"pedido_atualizado"}`))

	assert.Contains(t, esperarMensagem(t, painel1), "pedido_atualizado")
	assert.Contains(t, esperarMensagem(t, painel2), "pedido_atualizado")
}

func TestHub_SemJoinNaoRecebe(t *testing.T) {
	hub, wsURL := montarHub(t)

	// Conecta mas nunca manda o join
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hub.BroadcastSala("piz-a", []byte(`{"evento":"novo_pedido"}`))
	semMensagem(t, conn)
	assert.Equal(t, 0, hub.TotalClientes())
}

func TestHub_RemoveClienteAoDesconectar(t *testing.T) {
	hub, wsURL := montarHub(t)

	painel := conectarPainel(t, wsURL, "piz-a")
	require.Eventually(t, func() bool {
		return hub.ClientesSala("piz-a") == 1
	}, 3*time.Second, 20*time.Millisecond)

	painel.Close()

	require.Eventually(t, func() bool {
		return hub.ClientesSala("piz-a") == 0
	}, 3*time.Second, 20*time.Millisecond)
}
