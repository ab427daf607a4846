package kds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzaria/server/internal/models"
)

var upgraderTeste = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// servidorWS sobe um WebSocket fake que registra os joins recebidos e
// entrega as conexões abertas para o teste manipular
func servidorWS(t *testing.T) (url string, joins <-chan string, conexoes <-chan *websocket.Conn) {
	t.Helper()
	joinCh := make(chan string, 8)
	connCh := make(chan *websocket.Conn, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgraderTeste.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- conn

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var join struct {
				Action     string `json:"action"`
				PizzariaID string `json:"pizzariaId"`
			}
			if json.Unmarshal(payload, &join) == nil && join.Action == "join" {
				joinCh <- join.PizzariaID
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), joinCh, connCh
}

func esperarJoin(t *testing.T, joins <-chan string) string {
	t.Helper()
	select {
	case pizzariaID := <-joins:
		return pizzariaID
	case <-time.After(5 * time.Second):
		t.Fatal("join não chegou no servidor")
		return ""
	}
}

func TestSincronizador_JoinNaConexao(t *testing.T) {
	url, joins, _ := servidorWS(t)

	s := NewSincronizador(url, "piz-1", NewEstado(nil))
	s.Iniciar(context.Background())
	defer s.Parar()

	assert.Equal(t, "piz-1", esperarJoin(t, joins))
}

func TestSincronizador_ReconectaComNovoJoin(t *testing.T) {
	url, joins, conexoes := servidorWS(t)

	var recargas int64
	s := NewSincronizador(url, "piz-1", NewEstado(nil))
	s.Recarregar = func(ctx context.Context) error {
		atomic.AddInt64(&recargas, 1)
		return nil
	}
	s.Iniciar(context.Background())
	defer s.Parar()

	assert.Equal(t, "piz-1", esperarJoin(t, joins))
	conn := <-conexoes

	recargasAntes := atomic.LoadInt64(&recargas)

	// Derruba a conexão do lado do servidor: o painel tem que reconectar
	// e reenviar o join da MESMA pizzaria
	conn.Close()

	assert.Equal(t, "piz-1", esperarJoin(t, joins))

	// A reconexão dispara recarga (evento pode ter se perdido no vão)
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&recargas) > recargasAntes
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSincronizador_PararEncerraSemVazamento(t *testing.T) {
	url, joins, _ := servidorWS(t)

	s := NewSincronizador(url, "piz-1", NewEstado(nil))
	s.Iniciar(context.Background())
	esperarJoin(t, joins)

	terminou := make(chan struct{})
	go func() {
		s.Parar()
		close(terminou)
	}()

	select {
	case <-terminou:
	case <-time.After(5 * time.Second):
		t.Fatal("Parar não retornou: goroutine de sincronização vazou")
	}

	// Depois de parado, nenhum join novo aparece (sem timers duplicados)
	select {
	case <-joins:
		t.Fatal("join depois do Parar: assinatura vazou")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSincronizador_PararImediatoNaoPendura(t *testing.T) {
	url, _, conexoes := servidorWS(t)

	// Drena as conexões do servidor para o handler nunca travar
	go func() {
		for range conexoes {
		}
	}()

	// Parar logo após Iniciar disputa com o dial em andamento: se a
	// conexão recém-aberta escapar do Close, o Wait pendura no leitor
	for i := 0; i < 20; i++ {
		s := NewSincronizador(url, "piz-1", NewEstado(nil))
		s.Iniciar(context.Background())

		terminou := make(chan struct{})
		go func() {
			s.Parar()
			close(terminou)
		}()

		select {
		case <-terminou:
		case <-time.After(5 * time.Second):
			t.Fatalf("Parar pendurou na iteração %d", i)
		}
	}
}

func TestTratarEvento_ProgressoAplicadoDireto(t *testing.T) {
	estado := NewEstado(nil)
	estado.Aplicar(&models.Pedido{
		ID:              "ped-1",
		Status:          models.StatusPreparando,
		ProgressoPizzas: models.ProgressoPizzas{},
	})

	var recargas int64
	s := NewSincronizador("ws://invalido", "piz-1", estado)
	s.Recarregar = func(ctx context.Context) error {
		atomic.AddInt64(&recargas, 1)
		return nil
	}

	dados, err := json.Marshal(models.DadosProgresso{
		PedidoID:        "ped-1",
		Etapa:           EtapaPreparo,
		ProgressoPizzas: models.ProgressoPizzas{"direct-0": true},
	})
	require.NoError(t, err)

	s.tratarEvento(context.Background(), models.EventoPedido{
		Evento:     models.EventoProgressoPizzas,
		PizzariaID: "piz-1",
		Dados:      dados,
	})

	// Progresso entra direto no espelho, SEM recarga completa
	assert.EqualValues(t, 0, atomic.LoadInt64(&recargas))
	pedido, ok := estado.Pedido("ped-1")
	require.True(t, ok)
	assert.True(t, pedido.ProgressoPizzas["direct-0"])
}

func TestTratarEvento_PedidoAtualizadoRecarrega(t *testing.T) {
	var recargas int64
	s := NewSincronizador("ws://invalido", "piz-1", NewEstado(nil))
	s.Recarregar = func(ctx context.Context) error {
		atomic.AddInt64(&recargas, 1)
		return nil
	}

	for _, evento := range []string{models.EventoPedidoAtualizado, models.EventoPedidoCancelado} {
		s.tratarEvento(context.Background(), models.EventoPedido{Evento: evento, PizzariaID: "piz-1"})
	}

	assert.EqualValues(t, 2, atomic.LoadInt64(&recargas))
}

func TestTratarEvento_NovoPedidoComSom(t *testing.T) {
	estado := NewEstado(nil)

	var alertas int64
	s := NewSincronizador("ws://invalido", "piz-1", estado)
	s.Recarregar = func(ctx context.Context) error { return nil }
	s.AoNovoPedido = func(models.EventoPedido) { atomic.AddInt64(&alertas, 1) }

	s.tratarEvento(context.Background(), models.EventoPedido{Evento: models.EventoNovoPedido, PizzariaID: "piz-1"})
	assert.EqualValues(t, 1, atomic.LoadInt64(&alertas))

	// Som desligado: evento recarrega mas não toca alerta
	estado.AtivarSom(false)
	s.tratarEvento(context.Background(), models.EventoPedido{Evento: models.EventoNovoPedido, PizzariaID: "piz-1"})
	assert.EqualValues(t, 1, atomic.LoadInt64(&alertas))
}
