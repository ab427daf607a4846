package kds

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pizzaria/server/internal/models"
)

// Sincronizador mantém o espelho local do painel em dia com o servidor.
// Dois caminhos: o canal WebSocket (eventos nomeados por sala de
// pizzaria) e um agendador único de reconciliação que recarrega a lista
// completa: a cada 10s quando o canal está fora, a cada 30s como rede
// de segurança quando está conectado.
type Sincronizador struct {
	wsURL      string
	pizzariaID string
	estado     *Estado

	// Recarregar busca a lista completa no servidor e substitui o
	// espelho; falha de leitura só é logada (o próximo tick tenta de novo)
	Recarregar func(ctx context.Context) error

	// AoNovoPedido é chamado em todo evento novo_pedido quando o som
	// está ativado (alerta sonoro do painel)
	AoNovoPedido func(evento models.EventoPedido)

	// Intervalos do agendador de reconciliação
	IntervaloSemCanal time.Duration
	IntervaloComCanal time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	conectado bool
	mudou     chan struct{}
	cancel    context.CancelFunc
	encerrado sync.WaitGroup
}

// NewSincronizador cria a camada de sincronização de um painel
func NewSincronizador(wsURL, pizzariaID string, estado *Estado) *Sincronizador {
	return &Sincronizador{
		wsURL:             wsURL,
		pizzariaID:        pizzariaID,
		estado:            estado,
		IntervaloSemCanal: 10 * time.Second,
		IntervaloComCanal: 30 * time.Second,
		mudou:             make(chan struct{}, 1),
	}
}

// Iniciar liga o canal WebSocket e o agendador de reconciliação. A
// recarga inicial roda na hora, antes do primeiro tick.
func (s *Sincronizador) Iniciar(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if s.Recarregar != nil {
		if err := s.Recarregar(ctx); err != nil {
			log.Printf("⚠️ Erro na carga inicial do painel: %v", err)
		}
	}

	s.encerrado.Add(2)
	go s.loopCanal(ctx)
	go s.loopReconciliacao(ctx)
}

// Parar derruba o canal e o agendador. Obrigatório ao fechar o painel ou
// trocar de pizzaria, senão assinaturas e timers duplicados se acumulam.
func (s *Sincronizador) Parar() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	s.encerrado.Wait()
}

// Conectado informa se o canal WebSocket está de pé
func (s *Sincronizador) Conectado() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conectado
}

// setConectado muda o estado de conectividade e acorda o agendador para
// trocar de intervalo
func (s *Sincronizador) setConectado(conectado bool) {
	s.mu.Lock()
	mudou := s.conectado != conectado
	s.conectado = conectado
	s.mu.Unlock()

	if mudou {
		select {
		case s.mudou <- struct{}{}:
		default:
		}
	}
}

// loopCanal mantém o WebSocket vivo: conecta, faz o join da sala,
// processa eventos e reconecta com backoff quando cai. O join é
// reenviado em TODA reconexão.
func (s *Sincronizador) loopCanal(ctx context.Context) {
	defer s.encerrado.Done()

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
		if err != nil {
			s.setConectado(false)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		join := map[string]string{"action": "join", "pizzariaId": s.pizzariaID}
		if err := conn.WriteJSON(join); err != nil {
			conn.Close()
			s.setConectado(false)
			continue
		}

		// Parar() pode ter rodado entre o dial e a guarda da conexão;
		// nesse caso o Close() dele não alcançou esta conn, então
		// fechamos aqui antes de entrar no loop de leitura
		s.mu.Lock()
		if ctx.Err() != nil {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conn = conn
		s.mu.Unlock()
		s.setConectado(true)
		backoff = time.Second
		log.Printf("📡 Painel conectado na sala da pizzaria %s", s.pizzariaID)

		// Após reconectar pode ter evento perdido: recarrega já
		if s.Recarregar != nil {
			if err := s.Recarregar(ctx); err != nil {
				log.Printf("⚠️ Erro na recarga pós-conexão: %v", err)
			}
		}

		s.lerEventos(ctx, conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		s.setConectado(false)
		conn.Close()
	}
}

// lerEventos processa os eventos da sala até a conexão cair
func (s *Sincronizador) lerEventos(ctx context.Context, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("⚠️ Canal do painel caiu: %v", err)
			}
			return
		}

		var evento models.EventoPedido
		if err := json.Unmarshal(payload, &evento); err != nil {
			continue
		}

		s.tratarEvento(ctx, evento)
	}
}

// tratarEvento aplica a política de cada evento: progresso entra direto
// no espelho (atualização frequente e pequena); todo o resto dispara
// recarga completa, sem números de sequência nem deduplicação, a
// consistência vem da recarga.
func (s *Sincronizador) tratarEvento(ctx context.Context, evento models.EventoPedido) {
	switch evento.Evento {
	case models.EventoProgressoPizzas:
		var dados models.DadosProgresso
		if err := json.Unmarshal(evento.Dados, &dados); err != nil {
			return
		}
		s.estado.AplicarProgresso(dados.PedidoID, dados.Etapa, dados.ProgressoPizzas)

	case models.EventoNovoPedido:
		if s.AoNovoPedido != nil && s.estado.SomAtivado() {
			s.AoNovoPedido(evento)
		}
		s.recarregarLogando(ctx)

	case models.EventoPedidoAtualizado, models.EventoPedidoCancelado:
		s.recarregarLogando(ctx)
	}
}

// loopReconciliacao é o agendador único de recarga: um timer só, com o
// intervalo escolhido pela conectividade, recriado quando ela muda
func (s *Sincronizador) loopReconciliacao(ctx context.Context) {
	defer s.encerrado.Done()

	for {
		intervalo := s.IntervaloSemCanal
		if s.Conectado() {
			intervalo = s.IntervaloComCanal
		}

		select {
		case <-time.After(intervalo):
			s.recarregarLogando(ctx)
		case <-s.mudou:
			// Conectividade mudou: reinicia o timer com o novo intervalo
		case <-ctx.Done():
			return
		}
	}
}

// recarregarLogando recarrega a lista completa; falha vira log, não
// interrompe o painel
func (s *Sincronizador) recarregarLogando(ctx context.Context) {
	if s.Recarregar == nil {
		return
	}
	if err := s.Recarregar(ctx); err != nil && ctx.Err() == nil {
		log.Printf("⚠️ Erro na reconciliação do painel: %v", err)
	}
}
