package kds

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"pizzaria/server/internal/models"
)

// Persistencia é o adaptador opcional de persistência das preferências
// do painel (pizzaria selecionada, aba, som). O painel funciona sem
// persistência nenhuma: as preferências só não sobrevivem ao restart.
type Persistencia interface {
	Carregar() (map[string]string, error)
	Salvar(map[string]string) error
}

// PersistenciaArquivo guarda as preferências em um arquivo JSON local
type PersistenciaArquivo struct {
	Caminho string
}

// Carregar lê as preferências do arquivo
func (p *PersistenciaArquivo) Carregar() (map[string]string, error) {
	dados, err := os.ReadFile(p.Caminho)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	prefs := map[string]string{}
	if err := json.Unmarshal(dados, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Salvar grava as preferências no arquivo
func (p *PersistenciaArquivo) Salvar(prefs map[string]string) error {
	dados, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.Caminho, dados, 0644)
}

// Chaves das preferências persistidas
const (
	prefPizzaria = "pizzaria_selecionada"
	prefAba      = "aba_selecionada"
	prefSom      = "som_ativado"
)

// Estado é o estado em memória do painel: o espelho local dos pedidos
// ativos da pizzaria selecionada mais as preferências de UI. O espelho
// NUNCA é autoritativo: o servidor manda, e qualquer evento ambíguo
// dispara recarga completa.
type Estado struct {
	mu           sync.RWMutex
	pedidos      map[string]*models.Pedido
	pizzariaID   string
	aba          string
	somAtivado   bool
	persistencia Persistencia
}

// NewEstado cria o estado do painel. persistencia pode ser nil.
func NewEstado(persistencia Persistencia) *Estado {
	e := &Estado{
		pedidos:      make(map[string]*models.Pedido),
		somAtivado:   true,
		persistencia: persistencia,
	}

	if persistencia != nil {
		if prefs, err := persistencia.Carregar(); err == nil {
			e.pizzariaID = prefs[prefPizzaria]
			e.aba = prefs[prefAba]
			if prefs[prefSom] == "false" {
				e.somAtivado = false
			}
		}
	}

	return e
}

// salvarPreferencias persiste o snapshot atual (chamado com o lock pego)
func (e *Estado) salvarPreferencias() {
	if e.persistencia == nil {
		return
	}
	som := "true"
	if !e.somAtivado {
		som = "false"
	}
	// Falha de persistência de preferência não interrompe o painel
	_ = e.persistencia.Salvar(map[string]string{
		prefPizzaria: e.pizzariaID,
		prefAba:      e.aba,
		prefSom:      som,
	})
}

// PizzariaSelecionada retorna a pizzaria ativa do painel
func (e *Estado) PizzariaSelecionada() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pizzariaID
}

// SelecionarPizzaria troca a pizzaria ativa e limpa o espelho local
// (os pedidos da pizzaria anterior não valem para a nova)
func (e *Estado) SelecionarPizzaria(pizzariaID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pizzariaID = pizzariaID
	e.pedidos = make(map[string]*models.Pedido)
	e.salvarPreferencias()
}

// AbaSelecionada retorna a aba ativa do painel
func (e *Estado) AbaSelecionada() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aba
}

// SelecionarAba troca a aba ativa
func (e *Estado) SelecionarAba(aba string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aba = aba
	e.salvarPreferencias()
}

// SomAtivado indica se o alerta sonoro de pedido novo está ligado
func (e *Estado) SomAtivado() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.somAtivado
}

// AtivarSom liga/desliga o alerta sonoro
func (e *Estado) AtivarSom(ativado bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.somAtivado = ativado
	e.salvarPreferencias()
}

// Substituir troca o espelho inteiro (recarga completa do servidor)
func (e *Estado) Substituir(pedidos []models.Pedido) {
	e.mu.Lock()
	defer e.mu.Unlock()
	novo := make(map[string]*models.Pedido, len(pedidos))
	for i := range pedidos {
		p := pedidos[i]
		novo[p.ID] = &p
	}
	e.pedidos = novo
}

// Aplicar atualiza (ou insere) um pedido no espelho local
func (e *Estado) Aplicar(pedido *models.Pedido) {
	if pedido == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	copia := *pedido
	e.pedidos[pedido.ID] = &copia
}

// AplicarProgresso aplica um mapa de progresso direto no espelho, sem
// recarga completa (caminho rápido do evento progresso_pizzas_atualizado)
func (e *Estado) AplicarProgresso(pedidoID, etapa string, progresso models.ProgressoPizzas) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pedido, ok := e.pedidos[pedidoID]
	if !ok {
		// Pedido desconhecido: a próxima recarga traz
		return
	}
	if etapa == "conferencia" {
		pedido.ProgressoConferencia = progresso
	} else {
		pedido.ProgressoPizzas = progresso
	}
}

// Remover tira um pedido do espelho (cancelamento)
func (e *Estado) Remover(pedidoID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pedidos, pedidoID)
}

// Pedido retorna uma cópia do pedido do espelho local
func (e *Estado) Pedido(pedidoID string) (*models.Pedido, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	pedido, ok := e.pedidos[pedidoID]
	if !ok {
		return nil, false
	}
	copia := *pedido
	return &copia, true
}

// Pedidos retorna os pedidos do espelho ordenados por criação
func (e *Estado) Pedidos() []models.Pedido {
	e.mu.RLock()
	defer e.mu.RUnlock()
	lista := make([]models.Pedido, 0, len(e.pedidos))
	for _, p := range e.pedidos {
		lista = append(lista, *p)
	}
	sort.Slice(lista, func(i, j int) bool {
		return lista[i].CreatedAt.Before(lista[j].CreatedAt)
	})
	return lista
}
