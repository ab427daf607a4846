package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/services"
)

// CardapioController expõe o cardápio via REST
type CardapioController struct {
	service *services.CardapioService
}

// NewCardapioController cria o controller de cardápio
func NewCardapioController(service *services.CardapioService) *CardapioController {
	return &CardapioController{service: service}
}

// GetCardapio lista o cardápio em cache de uma pizzaria
// GET /api/v1/pizzarias/:id/cardapio
func (cc *CardapioController) GetCardapio(c *gin.Context) {
	itens := cc.service.Listar(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"itens": itens,
		"count": len(itens),
	})
}

// CreateItem cria ou atualiza um item do cardápio
// POST /api/v1/pizzarias/:id/cardapio
func (cc *CardapioController) CreateItem(c *gin.Context) {
	var item models.ItemCardapio
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Dados inválidos",
			"details": err.Error(),
		})
		return
	}
	item.PizzariaID = c.Param("id")

	if err := cc.service.Salvar(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// DeleteItem remove um item do cardápio
// DELETE /api/v1/pizzarias/:id/cardapio/:itemId
func (cc *CardapioController) DeleteItem(c *gin.Context) {
	if err := cc.service.Remover(c.Param("itemId")); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removido"})
}
