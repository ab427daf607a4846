package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/services"
)

// PedidoController expõe o fluxo de pedidos da cozinha via REST
type PedidoController struct {
	service *services.PedidoService
}

// NewPedidoController cria o controller de pedidos
func NewPedidoController(service *services.PedidoService) *PedidoController {
	return &PedidoController{service: service}
}

// CreatePedido registra um pedido novo
// POST /api/v1/pedidos
func (pc *PedidoController) CreatePedido(c *gin.Context) {
	var req services.CriarPedidoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Dados inválidos",
			"details": err.Error(),
		})
		return
	}

	pedido, err := pc.service.CriarPedido(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, pedido)
}

// GetPedidosCozinha lista os pedidos ativos de uma pizzaria. É este
// endpoint que o painel usa tanto na carga inicial quanto no polling
// de reconciliação.
// GET /api/v1/pedidos/cozinha?pizzaria_id=xxx
func (pc *PedidoController) GetPedidosCozinha(c *gin.Context) {
	pizzariaID := c.Query("pizzaria_id")
	if pizzariaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pizzaria_id é obrigatório"})
		return
	}

	pedidos, err := pc.service.PedidosCozinha(pizzariaID)
	if err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pedidos": pedidos,
		"count":   len(pedidos),
	})
}

// GetPedido busca um pedido pelo ID
// GET /api/v1/pedidos/:id
func (pc *PedidoController) GetPedido(c *gin.Context) {
	pedido, err := pc.service.BuscarPedido(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// UpdateStatus aplica uma transição manual de status
// PATCH /api/v1/pedidos/:id/status
func (pc *PedidoController) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.StatusPedido `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status é obrigatório"})
		return
	}

	pedido, err := pc.service.AtualizarStatus(c.Param("id"), req.Status)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// IniciarPreparo assume o pedido para um pizzaiolo (soft lock)
// POST /api/v1/pedidos/:id/iniciar-preparo
func (pc *PedidoController) IniciarPreparo(c *gin.Context) {
	var req struct {
		FuncionarioID string `json:"funcionario_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "funcionario_id é obrigatório"})
		return
	}

	pedido, err := pc.service.IniciarPreparo(c.Param("id"), req.FuncionarioID)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// ConfirmarPizza confirma uma unidade de preparo na etapa atual
// POST /api/v1/pedidos/:id/confirmar-pizza
func (pc *PedidoController) ConfirmarPizza(c *gin.Context) {
	var req struct {
		Chave string `json:"chave" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chave é obrigatória"})
		return
	}

	pedido, err := pc.service.ConfirmarPizza(c.Param("id"), req.Chave)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// UpdateProgresso aplica o mapa de progresso completo (PATCH do painel)
// PATCH /api/v1/pedidos/:id/progresso
func (pc *PedidoController) UpdateProgresso(c *gin.Context) {
	var req struct {
		Progresso models.ProgressoPizzas `json:"progresso" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progresso é obrigatório"})
		return
	}

	pedido, err := pc.service.AtualizarProgresso(c.Param("id"), req.Progresso)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// Despachar atribui um motoboy e despacha o pedido pronto
// POST /api/v1/pedidos/:id/despachar
func (pc *PedidoController) Despachar(c *gin.Context) {
	var req struct {
		MotoboyID string `json:"motoboy_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "motoboy_id é obrigatório"})
		return
	}

	pedido, err := pc.service.AtribuirMotoboy(c.Param("id"), req.MotoboyID)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// LiberarRetirada entrega um pedido de retirada no balcão
// POST /api/v1/pedidos/:id/liberar-retirada
func (pc *PedidoController) LiberarRetirada(c *gin.Context) {
	pedido, err := pc.service.LiberarRetirada(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// ConfirmarPagamento fecha o pedido entregue
// POST /api/v1/pedidos/:id/confirmar-pagamento
func (pc *PedidoController) ConfirmarPagamento(c *gin.Context) {
	pedido, err := pc.service.ConfirmarPagamento(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// Cancelar cancela um pedido ainda não pronto
// POST /api/v1/pedidos/:id/cancelar
func (pc *PedidoController) Cancelar(c *gin.Context) {
	pedido, err := pc.service.CancelarPedido(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// GetMotoboys lista os entregadores disponíveis para o despacho
// GET /api/v1/pizzarias/:id/motoboys
func (pc *PedidoController) GetMotoboys(c *gin.Context) {
	motoboys, err := pc.service.Motoboys(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"motoboys": motoboys,
		"count":    len(motoboys),
	})
}
