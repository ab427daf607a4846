package kds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzaria/server/internal/models"
)

// pedidoEmPreparo monta um pedido preparando com 1 pizza direta e um
// combo de 2 pizzas (3 unidades: direct-0, combo-1-0, combo-1-1)
func pedidoEmPreparo() *models.Pedido {
	return &models.Pedido{
		ID:     "ped-1",
		Numero: 7,
		Status: models.StatusPreparando,
		Tipo:   models.TipoDelivery,
		Itens: models.ItensPedido{
			{Nome: "Margherita", Categoria: models.CategoriaPizza, Quantidade: 1},
			{
				Nome: "Combo", Categoria: models.CategoriaCombo,
				PizzasCombo: []models.PizzaCombo{
					{Sabores: []string{"calabresa"}},
					{Sabores: []string{"portuguesa"}},
				},
			},
		},
		ProgressoPizzas: models.ProgressoPizzas{},
	}
}

// montarRastreador sobe um servidor fake e um rastreador apontando para ele
func montarRastreador(t *testing.T, handler http.HandlerFunc) (*Rastreador, *Estado, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	estado := NewEstado(nil)
	rastreador := NewRastreador(NewClient(srv.URL), estado)
	rastreador.AtrasoConferencia = 0
	return rastreador, estado, srv
}

func TestConfirmarUnidade_AtualizaEspelho(t *testing.T) {
	var chamadas int64
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&chamadas, 1)
		assert.Equal(t, "/api/v1/pedidos/ped-1/confirmar-pizza", r.URL.Path)

		var corpo struct {
			Chave string `json:"chave"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&corpo))
		assert.Equal(t, "direct-0", corpo.Chave)

		pedido := pedidoEmPreparo()
		pedido.ProgressoPizzas = models.ProgressoPizzas{"direct-0": true}
		json.NewEncoder(w).Encode(pedido)
	})
	estado.Aplicar(pedidoEmPreparo())

	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "direct-0")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&chamadas))

	pedido, ok := estado.Pedido("ped-1")
	require.True(t, ok)
	assert.True(t, pedido.ProgressoPizzas["direct-0"])
}

func TestConfirmarUnidade_Idempotente(t *testing.T) {
	var chamadas int64
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&chamadas, 1)
	})

	pedido := pedidoEmPreparo()
	pedido.ProgressoPizzas = models.ProgressoPizzas{"direct-0": true}
	estado.Aplicar(pedido)

	// Reconfirmar unidade já finalizada: sem requisição, sem erro
	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "direct-0")
	require.NoError(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt64(&chamadas))
}

func TestConfirmarUnidade_RollbackNaFalha(t *testing.T) {
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	estado.Aplicar(pedidoEmPreparo())

	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "combo-1-0")
	require.Error(t, err)

	// A marcação otimista daquela unidade (e só daquela) volta atrás
	pedido, ok := estado.Pedido("ped-1")
	require.True(t, ok)
	assert.False(t, pedido.ProgressoPizzas["combo-1-0"])
	assert.Equal(t, models.StatusPreparando, pedido.Status, "falha não dispara transição")
}

func TestConfirmarUnidade_RollbackPreservaOutrasUnidades(t *testing.T) {
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	pedido := pedidoEmPreparo()
	pedido.ProgressoPizzas = models.ProgressoPizzas{"direct-0": true}
	estado.Aplicar(pedido)

	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "combo-1-1")
	require.Error(t, err)

	atual, _ := estado.Pedido("ped-1")
	assert.True(t, atual.ProgressoPizzas["direct-0"], "unidade já confirmada não é afetada pelo rollback")
	assert.False(t, atual.ProgressoPizzas["combo-1-1"])
}

func TestConfirmarUnidade_ChaveObsoletaIgnorada(t *testing.T) {
	var chamadas int64
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&chamadas, 1)
	})
	estado.Aplicar(pedidoEmPreparo())

	// Chave de uma edição anterior do pedido: silêncio, nunca erro
	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "combo-9-9")
	require.NoError(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt64(&chamadas))
}

func TestConfirmarUnidade_ForaDaEtapa(t *testing.T) {
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {})

	pedido := pedidoEmPreparo()
	pedido.Status = models.StatusRecebido
	estado.Aplicar(pedido)

	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "direct-0")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

func TestConfirmarUnidade_EtapaConferencia(t *testing.T) {
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {
		pedido := pedidoEmPreparo()
		pedido.Status = models.StatusFinalizado
		pedido.ProgressoConferencia = models.ProgressoPizzas{"direct-0": true}
		json.NewEncoder(w).Encode(pedido)
	})

	pedido := pedidoEmPreparo()
	pedido.Status = models.StatusFinalizado
	pedido.ProgressoConferencia = models.ProgressoPizzas{}
	estado.Aplicar(pedido)

	err := rastreador.ConfirmarUnidade(context.Background(), "ped-1", "direct-0")
	require.NoError(t, err)

	atual, _ := estado.Pedido("ped-1")
	assert.True(t, atual.ProgressoConferencia["direct-0"])
	assert.False(t, atual.ProgressoPizzas["direct-0"], "conferência não mexe no mapa de preparo")
}

func TestProgressoAtual_PodaChavesObsoletas(t *testing.T) {
	rastreador, estado, _ := montarRastreador(t, func(w http.ResponseWriter, r *http.Request) {})

	pedido := pedidoEmPreparo()
	pedido.ProgressoPizzas = models.ProgressoPizzas{"direct-0": true, "direct-42": true}
	estado.Aplicar(pedido)

	progresso, ok := rastreador.ProgressoAtual("ped-1")
	require.True(t, ok)
	assert.Equal(t, models.ProgressoPizzas{"direct-0": true}, progresso)
}
