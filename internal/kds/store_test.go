package kds

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzaria/server/internal/models"
)

func TestPersistenciaArquivo_RoundTrip(t *testing.T) {
	caminho := filepath.Join(t.TempDir(), "painel.json")
	p := &PersistenciaArquivo{Caminho: caminho}

	// Arquivo inexistente: preferências vazias, sem erro
	prefs, err := p.Carregar()
	require.NoError(t, err)
	assert.Empty(t, prefs)

	require.NoError(t, p.Salvar(map[string]string{"pizzaria_selecionada": "piz-1"}))

	prefs, err = p.Carregar()
	require.NoError(t, err)
	assert.Equal(t, "piz-1", prefs["pizzaria_selecionada"])
}

func TestEstado_PreferenciasSobrevivem(t *testing.T) {
	caminho := filepath.Join(t.TempDir(), "painel.json")

	estado := NewEstado(&PersistenciaArquivo{Caminho: caminho})
	estado.SelecionarPizzaria("piz-2")
	estado.SelecionarAba("entregas")
	estado.AtivarSom(false)

	// Um "restart" do painel: novo Estado com o mesmo arquivo
	renascido := NewEstado(&PersistenciaArquivo{Caminho: caminho})
	assert.Equal(t, "piz-2", renascido.PizzariaSelecionada())
	assert.Equal(t, "entregas", renascido.AbaSelecionada())
	assert.False(t, renascido.SomAtivado())
}

func TestEstado_TrocarPizzariaLimpaEspelho(t *testing.T) {
	estado := NewEstado(nil)
	estado.SelecionarPizzaria("piz-1")
	estado.Aplicar(&models.Pedido{ID: "ped-1", PizzariaID: "piz-1"})

	estado.SelecionarPizzaria("piz-2")

	_, ok := estado.Pedido("ped-1")
	assert.False(t, ok, "pedidos da pizzaria anterior não valem na nova")
}

func TestEstado_AplicarProgressoPedidoDesconhecido(t *testing.T) {
	estado := NewEstado(nil)
	// Não pode entrar em pânico: a próxima recarga traz o pedido
	estado.AplicarProgresso("fantasma", EtapaPreparo, models.ProgressoPizzas{"direct-0": true})
}

func TestEstado_PedidosOrdenadosPorCriacao(t *testing.T) {
	estado := NewEstado(nil)
	agora := time.Now()
	estado.Aplicar(&models.Pedido{ID: "b", CreatedAt: agora})
	estado.Aplicar(&models.Pedido{ID: "a", CreatedAt: agora.Add(-time.Minute)})
	estado.Aplicar(&models.Pedido{ID: "c", CreatedAt: agora.Add(time.Minute)})

	pedidos := estado.Pedidos()
	require.Len(t, pedidos, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{pedidos[0].ID, pedidos[1].ID, pedidos[2].ID})
}

func TestEstado_PedidoRetornaCopia(t *testing.T) {
	estado := NewEstado(nil)
	estado.Aplicar(&models.Pedido{ID: "ped-1", Status: models.StatusRecebido})

	copia, ok := estado.Pedido("ped-1")
	require.True(t, ok)
	copia.Status = models.StatusCancelado

	original, _ := estado.Pedido("ped-1")
	assert.Equal(t, models.StatusRecebido, original.Status, "mutação na cópia não vaza para o espelho")
}
