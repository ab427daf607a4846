package kds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pizzaria/server/internal/models"
)

// Painel é a fachada da biblioteca: amarra o cliente REST, o espelho
// local, o rastreador de progresso e a sincronização, e expõe os
// callbacks que a UI do painel da cozinha chama.
type Painel struct {
	client     *Client
	estado     *Estado
	rastreador *Rastreador

	wsURL             string
	funcionarioID     string
	intervaloSemCanal time.Duration
	intervaloComCanal time.Duration

	mu            sync.Mutex
	sincronizador *Sincronizador

	// AoNovoPedido repassa o alerta de pedido novo para a UI (som)
	AoNovoPedido func(evento models.EventoPedido)
}

// ConfigPainel são os parâmetros de construção do painel
type ConfigPainel struct {
	// BaseURL do servidor REST (ex.: "http://localhost:8080")
	BaseURL string
	// WSURL do endpoint WebSocket (ex.: "ws://localhost:8080/ws")
	WSURL string
	// FuncionarioID do operador logado no painel
	FuncionarioID string
	// Persistencia das preferências de UI; pode ser nil
	Persistencia Persistencia
	// Intervalos do agendador de reconciliação. Zero mantém os
	// padrões (10s sem canal, 30s com canal conectado).
	IntervaloSemCanal time.Duration
	IntervaloComCanal time.Duration
}

// NewPainel monta o painel
func NewPainel(cfg ConfigPainel) *Painel {
	client := NewClient(cfg.BaseURL)
	estado := NewEstado(cfg.Persistencia)
	return &Painel{
		client:            client,
		estado:            estado,
		rastreador:        NewRastreador(client, estado),
		wsURL:             cfg.WSURL,
		funcionarioID:     cfg.FuncionarioID,
		intervaloSemCanal: cfg.IntervaloSemCanal,
		intervaloComCanal: cfg.IntervaloComCanal,
	}
}

// Estado dá acesso ao espelho local (para a UI renderizar)
func (p *Painel) Estado() *Estado {
	return p.estado
}

// Rastreador dá acesso ao rastreador de progresso
func (p *Painel) Rastreador() *Rastreador {
	return p.rastreador
}

// SelecionarPizzaria troca a pizzaria do painel: derruba a sincronização
// antiga (timers e assinatura inclusos) e sobe uma nova na sala certa.
// Relevante para o admin, que circula entre unidades.
func (p *Painel) SelecionarPizzaria(ctx context.Context, pizzariaID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sincronizador != nil {
		p.sincronizador.Parar()
		p.sincronizador = nil
	}

	p.estado.SelecionarPizzaria(pizzariaID)
	if pizzariaID == "" {
		return
	}

	s := NewSincronizador(p.wsURL, pizzariaID, p.estado)
	if p.intervaloSemCanal > 0 {
		s.IntervaloSemCanal = p.intervaloSemCanal
	}
	if p.intervaloComCanal > 0 {
		s.IntervaloComCanal = p.intervaloComCanal
	}
	s.Recarregar = p.recarregar
	s.AoNovoPedido = func(evento models.EventoPedido) {
		if p.AoNovoPedido != nil {
			p.AoNovoPedido(evento)
		}
	}
	s.Iniciar(ctx)
	p.sincronizador = s
}

// Fechar derruba a sincronização ao desligar o painel
func (p *Painel) Fechar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sincronizador != nil {
		p.sincronizador.Parar()
		p.sincronizador = nil
	}
}

// recarregar busca a lista completa e substitui o espelho
func (p *Painel) recarregar(ctx context.Context) error {
	pizzariaID := p.estado.PizzariaSelecionada()
	if pizzariaID == "" {
		return nil
	}
	pedidos, err := p.client.PedidosCozinha(ctx, pizzariaID)
	if err != nil {
		return err
	}
	p.estado.Substituir(pedidos)
	return nil
}

// IniciarPreparo assume o pedido para o operador do painel. Se outro
// pizzaiolo chegou primeiro, o erro é ErrConflito e o espelho é
// recarregado para mostrar quem assumiu.
func (p *Painel) IniciarPreparo(ctx context.Context, pedidoID string) error {
	pedido, err := p.client.IniciarPreparo(ctx, pedidoID, p.funcionarioID)
	if err != nil {
		if errors.Is(err, ErrConflito) {
			p.recarregarSilencioso(ctx)
		}
		return err
	}
	p.estado.Aplicar(pedido)
	return nil
}

// ConfirmarPizza confirma uma unidade de preparo na etapa atual
func (p *Painel) ConfirmarPizza(ctx context.Context, pedidoID, chave string) error {
	return p.rastreador.ConfirmarUnidade(ctx, pedidoID, chave)
}

// FinalizarPreparo avança manualmente preparando -> finalizado (caminho
// dos pedidos sem pizza, que a porta automática não cobre)
func (p *Painel) FinalizarPreparo(ctx context.Context, pedidoID string) error {
	return p.mudarStatus(ctx, pedidoID, models.StatusFinalizado)
}

// MarcarPronto avança manualmente finalizado -> pronto
func (p *Painel) MarcarPronto(ctx context.Context, pedidoID string) error {
	return p.mudarStatus(ctx, pedidoID, models.StatusPronto)
}

// Despachar fecha a expedição do pedido pronto. Para delivery o
// motoboyID é obrigatório; para retirada ele deve vir vazio e o pedido
// vai direto para entregue.
func (p *Painel) Despachar(ctx context.Context, pedidoID, motoboyID string) error {
	pedido, ok := p.estado.Pedido(pedidoID)
	if !ok {
		return ErrNaoEncontrado
	}

	var atualizado *models.Pedido
	var err error
	switch pedido.Tipo {
	case models.TipoDelivery:
		if motoboyID == "" {
			return fmt.Errorf("pedido delivery exige motoboy: %w", ErrTransicaoInvalida)
		}
		atualizado, err = p.client.Despachar(ctx, pedidoID, motoboyID)
	case models.TipoRetirada:
		atualizado, err = p.client.LiberarRetirada(ctx, pedidoID)
	default:
		return ErrTransicaoInvalida
	}
	if err != nil {
		return err
	}
	p.estado.Aplicar(atualizado)
	return nil
}

// Cancelar cancela o pedido e o remove do espelho (o servidor já o
// tira da lista da cozinha)
func (p *Painel) Cancelar(ctx context.Context, pedidoID string) error {
	if _, err := p.client.Cancelar(ctx, pedidoID); err != nil {
		return err
	}
	p.estado.Remover(pedidoID)
	return nil
}

// ConfirmarPagamento fecha o pedido entregue
func (p *Painel) ConfirmarPagamento(ctx context.Context, pedidoID string) error {
	pedido, err := p.client.ConfirmarPagamento(ctx, pedidoID)
	if err != nil {
		return err
	}
	p.estado.Aplicar(pedido)
	return nil
}

// Motoboys lista os entregadores da pizzaria selecionada para o modal
// de despacho
func (p *Painel) Motoboys(ctx context.Context) ([]models.Funcionario, error) {
	return p.client.Motoboys(ctx, p.estado.PizzariaSelecionada())
}

// mudarStatus aplica uma transição manual e atualiza o espelho
func (p *Painel) mudarStatus(ctx context.Context, pedidoID string, status models.StatusPedido) error {
	pedido, err := p.client.AtualizarStatus(ctx, pedidoID, status)
	if err != nil {
		return err
	}
	p.estado.Aplicar(pedido)
	return nil
}

// recarregarSilencioso recarrega sem propagar erro (pós-conflito)
func (p *Painel) recarregarSilencioso(ctx context.Context) {
	_ = p.recarregar(ctx)
}

// Acao é uma operação que a UI pode oferecer para um pedido
type Acao string

const (
	AcaoIniciarPreparo     Acao = "iniciar_preparo"
	AcaoConfirmarPizza     Acao = "confirmar_pizza"
	AcaoFinalizarPreparo   Acao = "finalizar_preparo"
	AcaoMarcarPronto       Acao = "marcar_pronto"
	AcaoDespachar          Acao = "despachar"
	AcaoConfirmarPagamento Acao = "confirmar_pagamento"
	AcaoCancelar           Acao = "cancelar"
)

// AcoesDisponiveis retorna as ações válidas para o estado atual do
// pedido. A UI só renderiza botões desta lista, então ação inválida nunca
// chega a virar requisição.
func (p *Painel) AcoesDisponiveis(pedidoID string) []Acao {
	pedido, ok := p.estado.Pedido(pedidoID)
	if !ok {
		return nil
	}

	temPizzas := len(models.UnidadesPreparo(pedido.Itens)) > 0

	switch pedido.Status {
	case models.StatusRecebido:
		return []Acao{AcaoIniciarPreparo, AcaoCancelar}
	case models.StatusPreparando:
		if temPizzas {
			return []Acao{AcaoConfirmarPizza, AcaoCancelar}
		}
		// Sem pizzas a porta automática não dispara: só o caminho manual
		return []Acao{AcaoFinalizarPreparo, AcaoCancelar}
	case models.StatusFinalizado:
		if temPizzas {
			return []Acao{AcaoConfirmarPizza}
		}
		return []Acao{AcaoMarcarPronto}
	case models.StatusPronto:
		return []Acao{AcaoDespachar}
	case models.StatusEntregue:
		return []Acao{AcaoConfirmarPagamento}
	default:
		return nil
	}
}
