// Package kds é a biblioteca do painel da cozinha (Kitchen Display System).
// Ela embute a lógica que os painéis compartilham: o cliente REST do
// servidor, o rastreador de progresso por pizza com atualização otimista,
// e a camada de sincronização em tempo real (WebSocket + polling de
// reconciliação).
package kds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pizzaria/server/internal/models"
)

// Taxonomia de erros do painel. O código HTTP do servidor decide qual
// erro o chamador enxerga; o painel usa isso para escolher entre
// mensagem bloqueante (conflito/permissão) e retry manual (rede).
var (
	// ErrConflito: outro funcionário já assumiu ou avançou o pedido
	ErrConflito = errors.New("pedido já assumido por outro funcionário")
	// ErrPermissao: o usuário atual não pode agir neste pedido/pizzaria
	ErrPermissao = errors.New("sem permissão para esta operação")
	// ErrNaoEncontrado: o pedido não existe mais no servidor
	ErrNaoEncontrado = errors.New("pedido não encontrado")
	// ErrTransicaoInvalida: o status atual não permite a operação
	ErrTransicaoInvalida = errors.New("transição de status não permitida")
	// ErrRede: falha sem veredito do servidor; o estado local otimista
	// deve ser revertido e o usuário pode tentar de novo
	ErrRede = errors.New("falha de comunicação com o servidor")
)

// Client é o cliente REST do painel contra o servidor da pizzaria
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient cria o cliente apontando para a URL base do servidor
// (ex.: "http://localhost:8080")
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PedidosCozinha busca os pedidos ativos da pizzaria (carga inicial e
// polling de reconciliação)
func (c *Client) PedidosCozinha(ctx context.Context, pizzariaID string) ([]models.Pedido, error) {
	var resposta struct {
		Pedidos []models.Pedido `json:"pedidos"`
	}
	url := fmt.Sprintf("%s/api/v1/pedidos/cozinha?pizzaria_id=%s", c.baseURL, pizzariaID)
	if err := c.fazer(ctx, http.MethodGet, url, nil, &resposta); err != nil {
		return nil, err
	}
	return resposta.Pedidos, nil
}

// BuscarPedido busca um pedido pelo ID (hidrata o progresso sob demanda)
func (c *Client) BuscarPedido(ctx context.Context, pedidoID string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s", c.baseURL, pedidoID)
	if err := c.fazer(ctx, http.MethodGet, url, nil, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// IniciarPreparo assume o pedido para o funcionário (soft lock no servidor)
func (c *Client) IniciarPreparo(ctx context.Context, pedidoID, funcionarioID string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/iniciar-preparo", c.baseURL, pedidoID)
	corpo := map[string]string{"funcionario_id": funcionarioID}
	if err := c.fazer(ctx, http.MethodPost, url, corpo, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// ConfirmarPizza confirma uma unidade de preparo na etapa atual do pedido
func (c *Client) ConfirmarPizza(ctx context.Context, pedidoID, chave string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/confirmar-pizza", c.baseURL, pedidoID)
	corpo := map[string]string{"chave": chave}
	if err := c.fazer(ctx, http.MethodPost, url, corpo, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// AtualizarProgresso envia o mapa de progresso completo
func (c *Client) AtualizarProgresso(ctx context.Context, pedidoID string, progresso models.ProgressoPizzas) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/progresso", c.baseURL, pedidoID)
	corpo := map[string]interface{}{"progresso": progresso}
	if err := c.fazer(ctx, http.MethodPatch, url, corpo, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// AtualizarStatus aplica uma transição manual de status
func (c *Client) AtualizarStatus(ctx context.Context, pedidoID string, status models.StatusPedido) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/status", c.baseURL, pedidoID)
	corpo := map[string]interface{}{"status": status}
	if err := c.fazer(ctx, http.MethodPatch, url, corpo, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// Despachar atribui o motoboy e despacha o pedido pronto
func (c *Client) Despachar(ctx context.Context, pedidoID, motoboyID string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/despachar", c.baseURL, pedidoID)
	corpo := map[string]string{"motoboy_id": motoboyID}
	if err := c.fazer(ctx, http.MethodPost, url, corpo, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// LiberarRetirada entrega um pedido de retirada no balcão
func (c *Client) LiberarRetirada(ctx context.Context, pedidoID string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/liberar-retirada", c.baseURL, pedidoID)
	if err := c.fazer(ctx, http.MethodPost, url, nil, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// ConfirmarPagamento fecha o pedido entregue
func (c *Client) ConfirmarPagamento(ctx context.Context, pedidoID string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/confirmar-pagamento", c.baseURL, pedidoID)
	if err := c.fazer(ctx, http.MethodPost, url, nil, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// Cancelar cancela um pedido ainda não despachado
func (c *Client) Cancelar(ctx context.Context, pedidoID string) (*models.Pedido, error) {
	var pedido models.Pedido
	url := fmt.Sprintf("%s/api/v1/pedidos/%s/cancelar", c.baseURL, pedidoID)
	if err := c.fazer(ctx, http.MethodPost, url, nil, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// Motoboys lista os entregadores disponíveis para o despacho
func (c *Client) Motoboys(ctx context.Context, pizzariaID string) ([]models.Funcionario, error) {
	var resposta struct {
		Motoboys []models.Funcionario `json:"motoboys"`
	}
	url := fmt.Sprintf("%s/api/v1/pizzarias/%s/motoboys", c.baseURL, pizzariaID)
	if err := c.fazer(ctx, http.MethodGet, url, nil, &resposta); err != nil {
		return nil, err
	}
	return resposta.Motoboys, nil
}

// fazer executa a requisição e converte o código HTTP na taxonomia de
// erros do painel
func (c *Client) fazer(ctx context.Context, metodo, url string, corpo interface{}, destino interface{}) error {
	var leitor *bytes.Reader
	if corpo != nil {
		dados, err := json.Marshal(corpo)
		if err != nil {
			return fmt.Errorf("erro ao serializar requisição: %w", err)
		}
		leitor = bytes.NewReader(dados)
	} else {
		leitor = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, metodo, url, leitor)
	if err != nil {
		return fmt.Errorf("erro ao montar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRede, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if destino == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(destino); err != nil {
			return fmt.Errorf("%w: resposta ilegível: %v", ErrRede, err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNaoEncontrado
	case http.StatusConflict:
		return ErrConflito
	case http.StatusForbidden:
		return ErrPermissao
	case http.StatusUnprocessableEntity:
		return ErrTransicaoInvalida
	default:
		var detalhe struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detalhe)
		if detalhe.Error != "" {
			return fmt.Errorf("servidor respondeu %d: %s", resp.StatusCode, detalhe.Error)
		}
		return fmt.Errorf("servidor respondeu %d", resp.StatusCode)
	}
}
