package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/utils"
)

// redisDeTeste sobe um Redis em memória e devolve o wrapper usado pelos
// serviços
func redisDeTeste(t *testing.T) (*utils.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return utils.NewRedisClient(client), mr
}

func TestIsSerializationFailure(t *testing.T) {
	assert.False(t, isSerializationFailure(nil))
	assert.False(t, isSerializationFailure(errors.New("connection refused")))

	// Códigos do PostgreSQL: 40001 (serialization) e 40P01 (deadlock)
	assert.True(t, isSerializationFailure(&pq.Error{Code: "40001"}))
	assert.True(t, isSerializationFailure(&pq.Error{Code: "40P01"}))
	assert.False(t, isSerializationFailure(&pq.Error{Code: "23505"}))

	// Erro embrulhado ainda é reconhecido
	embrulhado := fmt.Errorf("erro ao salvar: %w", &pq.Error{Code: "40001"})
	assert.True(t, isSerializationFailure(embrulhado))

	// Fallback por mensagem quando o driver não expõe o código
	assert.True(t, isSerializationFailure(errors.New("ERROR: could not serialize access due to concurrent update")))
	assert.True(t, isSerializationFailure(errors.New("deadlock detected")))
}

func TestCriarPedidoRequest_Validacao(t *testing.T) {
	ps := &PedidoService{}

	_, err := ps.CriarPedido(CriarPedidoRequest{
		PizzariaID: "piz-1",
		Tipo:       "jetpack",
	})
	assert.Error(t, err, "tipo desconhecido é rejeitado")

	_, err = ps.CriarPedido(CriarPedidoRequest{
		PizzariaID: "piz-1",
		Tipo:       "delivery",
	})
	assert.Error(t, err, "delivery sem endereço é rejeitado")
}

func TestCriarPedido_ValidaItensContraCardapio(t *testing.T) {
	models.SetCardapio(map[string][]models.ItemCardapio{
		"piz-1": {{ID: "item-1", Nome: "Margherita", Categoria: models.CategoriaPizza}},
	})
	t.Cleanup(func() { models.SetCardapio(map[string][]models.ItemCardapio{}) })

	ps := &PedidoService{cardapio: NewCardapioService(nil, nil)}

	// Referência a item que não existe no cardápio barra o pedido na
	// validação, antes de qualquer escrita
	_, err := ps.CriarPedido(CriarPedidoRequest{
		PizzariaID: "piz-1",
		Tipo:       models.TipoRetirada,
		Itens: models.ItensPedido{
			{ItemCardapioID: "item-fantasma", Nome: "Inexistente", Categoria: models.CategoriaPizza, Quantidade: 1, PrecoUnitario: 4500},
		},
	})
	assert.ErrorIs(t, err, ErrNaoEncontrado)
}

func TestNumeroDoContador(t *testing.T) {
	redisUtil, mr := redisDeTeste(t)
	ps := &PedidoService{redisUtil: redisUtil}

	n, ok := ps.numeroDoContador("piz-1")
	require.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = ps.numeroDoContador("piz-1")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	// Contador independente por pizzaria
	n, ok = ps.numeroDoContador("piz-2")
	require.True(t, ok)
	assert.Equal(t, 1, n)

	// Redis fora: sinaliza o fallback, que roda dentro da transação
	// serializável da criação do pedido
	mr.Close()
	_, ok = ps.numeroDoContador("piz-1")
	assert.False(t, ok)

	// Sem Redis configurado, idem
	sem := &PedidoService{}
	_, ok = sem.numeroDoContador("piz-1")
	assert.False(t, ok)
}
