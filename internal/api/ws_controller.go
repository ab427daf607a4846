package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Aceita qualquer origin (os painéis rodam em tablets na rede local)
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// mensagemJoin é a primeira mensagem que o painel envia após conectar
type mensagemJoin struct {
	Action     string `json:"action"`
	PizzariaID string `json:"pizzariaId"`
}

// WSController atende os WebSockets dos painéis da cozinha
type WSController struct {
	hub *Hub
}

// NewWSController cria o controller de WebSocket
func NewWSController(hub *Hub) *WSController {
	return &WSController{hub: hub}
}

// ServeWS faz o upgrade da conexão e processa o join do painel.
// O painel só entra na sala (e só recebe eventos) depois de mandar
// {"action":"join","pizzariaId":"..."}.
func (wc *WSController) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ Erro no upgrade do WebSocket: %v", err)
		return
	}

	defer func() {
		wc.hub.RemoveClient(conn)
		log.Printf("📱 Painel desconectado. Conexões restantes: %d", wc.hub.TotalClientes())
	}()

	entrou := false
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ Erro no WebSocket: %v", err)
			}
			break
		}

		var join mensagemJoin
		if err := json.Unmarshal(payload, &join); err != nil {
			// Ping/pong de texto e mensagens desconhecidas são ignorados
			continue
		}

		if join.Action == "join" && join.PizzariaID != "" {
			wc.hub.AddClient(conn, join.PizzariaID)
			entrou = true
			log.Printf("📱 Painel entrou na sala da pizzaria %s (%d na sala, %d no total)",
				join.PizzariaID, wc.hub.ClientesSala(join.PizzariaID), wc.hub.TotalClientes())
		}
	}

	if !entrou {
		log.Printf("📱 Conexão encerrada sem join")
	}
}
