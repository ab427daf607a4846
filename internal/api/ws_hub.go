package api

import (
	"sync"

	"github.com/gorilla/websocket"
)

// mensagemSala é uma mensagem destinada a todos os painéis de uma pizzaria
type mensagemSala struct {
	pizzariaID string
	payload    []byte
}

// Hub gerencia as conexões WebSocket dos painéis da cozinha, agrupadas
// em salas por pizzaria. Um painel só recebe eventos da própria unidade.
type Hub struct {
	salas     map[string]map[*websocket.Conn]bool
	conexoes  map[*websocket.Conn]string
	broadcast chan mensagemSala
	mutex     sync.RWMutex
}

// NewHub cria um hub vazio
func NewHub() *Hub {
	return &Hub{
		salas:     make(map[string]map[*websocket.Conn]bool),
		conexoes:  make(map[*websocket.Conn]string),
		broadcast: make(chan mensagemSala, 256), // Canal bufferizado para não travar o produtor
	}
}

// Run processa as mensagens do canal de broadcast
func (h *Hub) Run() {
	for {
		msg := <-h.broadcast
		h.mutex.RLock()
		sala := h.salas[msg.pizzariaID]
		conexoes := make([]*websocket.Conn, 0, len(sala))
		for conn := range sala {
			conexoes = append(conexoes, conn)
		}
		h.mutex.RUnlock()

		for _, conn := range conexoes {
			if err := conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
				// Remove o painel ao falhar a escrita
				h.RemoveClient(conn)
			}
		}
	}
}

// AddClient registra o painel na sala da pizzaria
func (h *Hub) AddClient(conn *websocket.Conn, pizzariaID string) {
	h.mutex.Lock()
	if sala, ok := h.conexoes[conn]; ok && sala != pizzariaID {
		// Painel trocando de sala: sai da antiga antes de entrar na nova
		delete(h.salas[sala], conn)
	}
	if h.salas[pizzariaID] == nil {
		h.salas[pizzariaID] = make(map[*websocket.Conn]bool)
	}
	h.salas[pizzariaID][conn] = true
	h.conexoes[conn] = pizzariaID
	h.mutex.Unlock()
}

// RemoveClient tira o painel da sala e fecha a conexão
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mutex.Lock()
	if pizzariaID, ok := h.conexoes[conn]; ok {
		delete(h.salas[pizzariaID], conn)
		if len(h.salas[pizzariaID]) == 0 {
			delete(h.salas, pizzariaID)
		}
		delete(h.conexoes, conn)
		conn.Close()
	}
	h.mutex.Unlock()
}

// BroadcastSala envia a mensagem para todos os painéis de uma pizzaria
func (h *Hub) BroadcastSala(pizzariaID string, payload []byte) {
	select {
	case h.broadcast <- mensagemSala{pizzariaID: pizzariaID, payload: payload}:
	default:
		// Canal cheio: descarta a mensagem (o polling de segurança cobre)
	}
}

// ClientesSala retorna quantos painéis estão conectados na sala
func (h *Hub) ClientesSala(pizzariaID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.salas[pizzariaID])
}

// TotalClientes retorna o total de painéis conectados
func (h *Hub) TotalClientes() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.conexoes)
}
