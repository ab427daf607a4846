package models

import "encoding/json"

// Eventos publicados no tópico de pedidos e repassados ao canal WebSocket
// dos painéis da cozinha. Todos os eventos exceto o de progresso provocam
// recarga completa da lista no cliente; o de progresso carrega o mapa novo
// e é aplicado direto no estado local.
const (
	EventoNovoPedido        = "novo_pedido"
	EventoPedidoAtualizado  = "pedido_atualizado"
	EventoPedidoCancelado   = "pedido_cancelado"
	EventoProgressoPizzas   = "progresso_pizzas_atualizado"
)

// EventoPedido é o envelope das mensagens do tópico e do WebSocket
type EventoPedido struct {
	Evento     string          `json:"evento"`
	PizzariaID string          `json:"pizzaria_id"`
	Dados      json.RawMessage `json:"dados,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// DadosProgresso é o payload do evento progresso_pizzas_atualizado
type DadosProgresso struct {
	PedidoID        string          `json:"pedido_id"`
	Etapa           string          `json:"etapa"` // "preparo" ou "conferencia"
	ProgressoPizzas ProgressoPizzas `json:"progresso_pizzas"`
}

// DadosPedido é o payload dos eventos de pedido (novo/atualizado/cancelado)
type DadosPedido struct {
	PedidoID string       `json:"pedido_id"`
	Numero   string       `json:"numero"`
	Status   StatusPedido `json:"status"`
}
