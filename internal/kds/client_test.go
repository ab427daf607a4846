package kds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TaxonomiaDeErros(t *testing.T) {
	casos := []struct {
		nome   string
		codigo int
		quer   error
	}{
		{"conflito vira ErrConflito", http.StatusConflict, ErrConflito},
		{"404 vira ErrNaoEncontrado", http.StatusNotFound, ErrNaoEncontrado},
		{"403 vira ErrPermissao", http.StatusForbidden, ErrPermissao},
		{"422 vira ErrTransicaoInvalida", http.StatusUnprocessableEntity, ErrTransicaoInvalida},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(caso.codigo)
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			_, err := client.IniciarPreparo(context.Background(), "p1", "f1")
			require.Error(t, err)
			assert.ErrorIs(t, err, caso.quer)
		})
	}
}

func TestClient_FalhaDeRedeViraErrRede(t *testing.T) {
	// Servidor fechado na cara: nenhum veredito do lado de lá
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.BuscarPedido(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRede)
}

func TestClient_PedidosCozinha(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/pedidos/cozinha", r.URL.Path)
		assert.Equal(t, "piz-1", r.URL.Query().Get("pizzaria_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pedidos":[{"id":"a","numero":7,"status":"recebido"}],"count":1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pedidos, err := client.PedidosCozinha(context.Background(), "piz-1")
	require.NoError(t, err)
	require.Len(t, pedidos, 1)
	assert.Equal(t, "a", pedidos[0].ID)
	assert.Equal(t, "007", pedidos[0].NumeroExibicao())
}
