package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/services"
)

// PizzariaController expõe o cadastro das unidades via REST
type PizzariaController struct {
	service *services.PizzariaService
}

// NewPizzariaController cria o controller de pizzarias
func NewPizzariaController(service *services.PizzariaService) *PizzariaController {
	return &PizzariaController{service: service}
}

// GetPizzarias lista todas as unidades
// GET /api/v1/pizzarias
func (pc *PizzariaController) GetPizzarias(c *gin.Context) {
	pizzarias, err := pc.service.Listar()
	if err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pizzarias": pizzarias,
		"count":     len(pizzarias),
	})
}

// GetPizzaria busca uma unidade pelo ID
// GET /api/v1/pizzarias/:id
func (pc *PizzariaController) GetPizzaria(c *gin.Context) {
	pizzaria, err := pc.service.Buscar(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pizzaria)
}

// CreatePizzaria cadastra uma unidade nova
// POST /api/v1/pizzarias
func (pc *PizzariaController) CreatePizzaria(c *gin.Context) {
	var pizzaria models.Pizzaria
	if err := c.ShouldBindJSON(&pizzaria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Dados inválidos",
			"details": err.Error(),
		})
		return
	}

	if err := pc.service.Criar(&pizzaria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, pizzaria)
}

// UpdatePizzaria altera os dados cadastrais
// PUT /api/v1/pizzarias/:id
func (pc *PizzariaController) UpdatePizzaria(c *gin.Context) {
	var mudancas map[string]interface{}
	if err := c.ShouldBindJSON(&mudancas); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	pizzaria, err := pc.service.Atualizar(c.Param("id"), mudancas)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, pizzaria)
}
