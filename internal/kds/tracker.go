package kds

import (
	"context"
	"log"
	"time"

	"pizzaria/server/internal/models"
)

// Rastreador mantém o progresso por pizza no painel com atualização
// otimista: a cozinheira vê a marcação na hora, e se o servidor recusar
// a confirmação a marcação daquela unidade (e só daquela) volta atrás.
type Rastreador struct {
	client *Client
	estado *Estado

	// Atraso antes de persistir a última confirmação da conferência,
	// para o painel exibir o aviso de "pedido completo" antes da
	// transição automática para pronto
	AtrasoConferencia time.Duration
}

// NewRastreador cria o rastreador de progresso
func NewRastreador(client *Client, estado *Estado) *Rastreador {
	return &Rastreador{
		client:            client,
		estado:            estado,
		AtrasoConferencia: 1500 * time.Millisecond,
	}
}

// Unidades recomputa as unidades de preparo do pedido a partir dos itens
// atuais. Progresso de chaves que não existem mais simplesmente não
// aparece, e chave obsoleta nunca derruba o painel.
func (r *Rastreador) Unidades(pedidoID string) []models.UnidadePreparo {
	pedido, ok := r.estado.Pedido(pedidoID)
	if !ok {
		return nil
	}
	return models.UnidadesPreparo(pedido.Itens)
}

// ProgressoAtual retorna o mapa de progresso da etapa em que o pedido
// está, já podado para as chaves válidas
func (r *Rastreador) ProgressoAtual(pedidoID string) (models.ProgressoPizzas, bool) {
	pedido, ok := r.estado.Pedido(pedidoID)
	if !ok {
		return nil, false
	}
	progresso, ok := progressoDaEtapa(pedido)
	if !ok {
		return nil, false
	}
	return progresso.Podar(models.UnidadesPreparo(pedido.Itens)), true
}

// progressoDaEtapa escolhe o mapa conforme o status do pedido
func progressoDaEtapa(pedido *models.Pedido) (models.ProgressoPizzas, bool) {
	switch pedido.Status {
	case models.StatusPreparando:
		return pedido.ProgressoPizzas, true
	case models.StatusFinalizado:
		return pedido.ProgressoConferencia, true
	default:
		return nil, false
	}
}

// ConfirmarUnidade marca uma unidade como finalizada na etapa atual.
// Idempotente: reconfirmar unidade já finalizada não faz nada. A marcação
// local é otimista; se a persistência falhar, ela reverte e nenhuma
// transição automática acontece.
func (r *Rastreador) ConfirmarUnidade(ctx context.Context, pedidoID, chave string) error {
	pedido, ok := r.estado.Pedido(pedidoID)
	if !ok {
		return ErrNaoEncontrado
	}

	progresso, emEtapa := progressoDaEtapa(pedido)
	if !emEtapa {
		return ErrTransicaoInvalida
	}

	unidades := models.UnidadesPreparo(pedido.Itens)
	if !chaveValida(chave, unidades) {
		// Chave obsoleta (pedido editado no meio): ignorada em silêncio
		return nil
	}

	if progresso[chave] {
		// Já finalizada: sem efeito adicional
		return nil
	}

	etapa := EtapaPreparo
	if pedido.Status == models.StatusFinalizado {
		etapa = EtapaConferencia
	}

	// Mutação otimista: aplica local, persiste, reverte só esta unidade
	// se o servidor recusar
	otimista := progresso.Podar(unidades)
	otimista[chave] = true
	r.estado.AplicarProgresso(pedidoID, etapa, otimista)

	completaConferencia := etapa == EtapaConferencia && otimista.Completo(unidades)

	return r.mutacaoOtimista(
		func() {
			revertido := make(models.ProgressoPizzas, len(otimista))
			for k, v := range otimista {
				revertido[k] = v
			}
			delete(revertido, chave)
			r.estado.AplicarProgresso(pedidoID, etapa, revertido)
		},
		func() error {
			if completaConferencia && r.AtrasoConferencia > 0 {
				// Deixa o aviso de conclusão aparecer antes da transição
				select {
				case <-time.After(r.AtrasoConferencia):
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			atualizado, err := r.client.ConfirmarPizza(ctx, pedidoID, chave)
			if err != nil {
				return err
			}
			r.estado.Aplicar(atualizado)
			return nil
		},
	)
}

// mutacaoOtimista executa a persistência e chama o reverter na falha.
// O helper existe para todo call site de confirmação usar o MESMO
// caminho de rollback em vez de reimplementar o padrão.
func (r *Rastreador) mutacaoOtimista(reverter func(), persistir func() error) error {
	if err := persistir(); err != nil {
		reverter()
		log.Printf("⚠️ Confirmação recusada, marcação local revertida: %v", err)
		return err
	}
	return nil
}

// chaveValida verifica se a chave pertence ao conjunto atual de unidades
func chaveValida(chave string, unidades []models.UnidadePreparo) bool {
	for _, u := range unidades {
		if u.Chave == chave {
			return true
		}
	}
	return false
}

// Etapas do progresso, espelhando o servidor
const (
	EtapaPreparo     = "preparo"
	EtapaConferencia = "conferencia"
)
