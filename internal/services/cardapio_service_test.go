package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzaria/server/internal/models"
)

func cardapioDeTeste(t *testing.T) {
	t.Helper()
	models.SetCardapio(map[string][]models.ItemCardapio{
		"piz-1": {
			{ID: "item-marg", Nome: "Margherita", Categoria: models.CategoriaPizza},
			{ID: "item-combo", Nome: "Combo Família", Categoria: models.CategoriaCombo},
		},
	})
	t.Cleanup(func() { models.SetCardapio(map[string][]models.ItemCardapio{}) })
}

func TestValidarItens(t *testing.T) {
	cardapioDeTeste(t)
	cs := NewCardapioService(nil, nil)

	// Itens com referência válida passam
	err := cs.ValidarItens("piz-1", models.ItensPedido{
		{ItemCardapioID: "item-marg", Nome: "Margherita", Categoria: models.CategoriaPizza, Quantidade: 1},
		{ItemCardapioID: "item-combo", Nome: "Combo Família", Categoria: models.CategoriaCombo, Quantidade: 1},
	})
	assert.NoError(t, err)

	// Item avulso sem item_cardapio_id passa direto (digitado no balcão)
	err = cs.ValidarItens("piz-1", models.ItensPedido{
		{Nome: "Pizza do dia", Categoria: models.CategoriaPizza, Quantidade: 1},
	})
	assert.NoError(t, err)

	// Referência inexistente é barrada
	err = cs.ValidarItens("piz-1", models.ItensPedido{
		{ItemCardapioID: "item-fantasma", Nome: "Inexistente", Categoria: models.CategoriaPizza, Quantidade: 1},
	})
	assert.ErrorIs(t, err, ErrNaoEncontrado)

	// Item de outra pizzaria não vale aqui
	err = cs.ValidarItens("piz-2", models.ItensPedido{
		{ItemCardapioID: "item-marg", Nome: "Margherita", Categoria: models.CategoriaPizza, Quantidade: 1},
	})
	assert.ErrorIs(t, err, ErrNaoEncontrado)
}

func TestParar_EncerraAutoReload(t *testing.T) {
	redisUtil, _ := redisDeTeste(t)
	cs := NewCardapioService(nil, redisUtil)

	cs.IniciarAutoReload(time.Hour)

	concluido := make(chan struct{})
	go func() {
		cs.Parar()
		close(concluido)
	}()
	select {
	case <-concluido:
	case <-time.After(3 * time.Second):
		t.Fatal("Parar não retornou")
	}

	// Com as goroutines encerradas, um reload publicado depois não pode
	// mais disparar recarga (com db nil, recarregar derrubaria o teste)
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, redisUtil.Publish(CanalReloadCardapio, "reload"))
	time.Sleep(200 * time.Millisecond)
}
