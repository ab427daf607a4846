package kds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzaria/server/internal/models"
)

func montarPainel(t *testing.T, handler http.HandlerFunc) *Painel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewPainel(ConfigPainel{
		BaseURL:       srv.URL,
		WSURL:         "ws://nao-usado",
		FuncionarioID: "func-1",
	})
}

func TestPainel_IntervalosDeReconciliacao(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos":[],"count":0}`))
	}))
	t.Cleanup(srv.Close)

	// Intervalos configurados chegam no agendador
	painel := NewPainel(ConfigPainel{
		BaseURL:           srv.URL,
		WSURL:             "ws://127.0.0.1:1",
		IntervaloSemCanal: 2 * time.Second,
		IntervaloComCanal: 7 * time.Second,
	})
	painel.SelecionarPizzaria(context.Background(), "piz-1")
	t.Cleanup(painel.Fechar)

	painel.mu.Lock()
	s := painel.sincronizador
	painel.mu.Unlock()
	require.NotNil(t, s)
	assert.Equal(t, 2*time.Second, s.IntervaloSemCanal)
	assert.Equal(t, 7*time.Second, s.IntervaloComCanal)

	// Zero mantém os padrões
	padrao := NewPainel(ConfigPainel{BaseURL: srv.URL, WSURL: "ws://127.0.0.1:1"})
	padrao.SelecionarPizzaria(context.Background(), "piz-1")
	t.Cleanup(padrao.Fechar)

	padrao.mu.Lock()
	s = padrao.sincronizador
	padrao.mu.Unlock()
	require.NotNil(t, s)
	assert.Equal(t, 10*time.Second, s.IntervaloSemCanal)
	assert.Equal(t, 30*time.Second, s.IntervaloComCanal)
}

func TestDespachar_DeliveryExigeMotoboy(t *testing.T) {
	painel := montarPainel(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("sem motoboy a requisição nem deve sair")
	})
	painel.Estado().Aplicar(&models.Pedido{
		ID: "ped-1", Status: models.StatusPronto, Tipo: models.TipoDelivery,
	})

	err := painel.Despachar(context.Background(), "ped-1", "")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

func TestDespachar_DeliveryComMotoboy(t *testing.T) {
	painel := montarPainel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/pedidos/ped-1/despachar", r.URL.Path)
		json.NewEncoder(w).Encode(&models.Pedido{
			ID: "ped-1", Status: models.StatusSaiuEntrega, Tipo: models.TipoDelivery,
		})
	})
	painel.Estado().Aplicar(&models.Pedido{
		ID: "ped-1", Status: models.StatusPronto, Tipo: models.TipoDelivery,
	})

	require.NoError(t, painel.Despachar(context.Background(), "ped-1", "moto-1"))

	pedido, _ := painel.Estado().Pedido("ped-1")
	assert.Equal(t, models.StatusSaiuEntrega, pedido.Status)
}

func TestDespachar_RetiradaVaiDireto(t *testing.T) {
	painel := montarPainel(t, func(w http.ResponseWriter, r *http.Request) {
		// Retirada usa o endpoint de liberação, sem motoboy no corpo
		assert.Equal(t, "/api/v1/pedidos/ped-1/liberar-retirada", r.URL.Path)
		json.NewEncoder(w).Encode(&models.Pedido{
			ID: "ped-1", Status: models.StatusEntregue, Tipo: models.TipoRetirada,
		})
	})
	painel.Estado().Aplicar(&models.Pedido{
		ID: "ped-1", Status: models.StatusPronto, Tipo: models.TipoRetirada,
	})

	require.NoError(t, painel.Despachar(context.Background(), "ped-1", ""))

	pedido, _ := painel.Estado().Pedido("ped-1")
	assert.Equal(t, models.StatusEntregue, pedido.Status)
}

func TestIniciarPreparo_ConflitoRecarrega(t *testing.T) {
	recarregou := false
	painel := montarPainel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/pedidos/cozinha" {
			recarregou = true
			w.Write([]byte(`{"pedidos":[],"count":0}`))
			return
		}
		// Outro pizzaiolo chegou primeiro
		w.WriteHeader(http.StatusConflict)
	})
	painel.Estado().SelecionarPizzaria("piz-1")
	painel.Estado().Aplicar(&models.Pedido{ID: "ped-1", Status: models.StatusRecebido})

	err := painel.IniciarPreparo(context.Background(), "ped-1")
	assert.ErrorIs(t, err, ErrConflito)
	assert.True(t, recarregou, "conflito dispara recarga para mostrar quem assumiu")
}

func TestAcoesDisponiveis(t *testing.T) {
	painel := montarPainel(t, func(w http.ResponseWriter, r *http.Request) {})

	comPizza := models.ItensPedido{{Categoria: models.CategoriaPizza, Quantidade: 1}}
	soBebidas := models.ItensPedido{{Categoria: models.CategoriaBebida, Quantidade: 2}}

	casos := []struct {
		nome   string
		pedido models.Pedido
		quer   []Acao
	}{
		{
			"recebido pode assumir ou cancelar",
			models.Pedido{ID: "p", Status: models.StatusRecebido, Itens: comPizza},
			[]Acao{AcaoIniciarPreparo, AcaoCancelar},
		},
		{
			"preparando com pizza confirma unidades",
			models.Pedido{ID: "p", Status: models.StatusPreparando, Itens: comPizza},
			[]Acao{AcaoConfirmarPizza, AcaoCancelar},
		},
		{
			"preparando sem pizza só tem o caminho manual",
			models.Pedido{ID: "p", Status: models.StatusPreparando, Itens: soBebidas},
			[]Acao{AcaoFinalizarPreparo, AcaoCancelar},
		},
		{
			"finalizado sem pizza marca pronto manualmente",
			models.Pedido{ID: "p", Status: models.StatusFinalizado, Itens: soBebidas},
			[]Acao{AcaoMarcarPronto},
		},
		{
			"pronto despacha",
			models.Pedido{ID: "p", Status: models.StatusPronto, Itens: comPizza},
			[]Acao{AcaoDespachar},
		},
		{
			"entregue confirma pagamento",
			models.Pedido{ID: "p", Status: models.StatusEntregue, Itens: comPizza},
			[]Acao{AcaoConfirmarPagamento},
		},
		{
			"pago não tem mais ações",
			models.Pedido{ID: "p", Status: models.StatusFinalizadoPago, Itens: comPizza},
			nil,
		},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			painel.Estado().Aplicar(&caso.pedido)
			assert.Equal(t, caso.quer, painel.AcoesDisponiveis("p"))
		})
	}
}
