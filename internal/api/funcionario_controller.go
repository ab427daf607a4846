package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/services"
)

// FuncionarioController expõe o cadastro da equipe via REST
type FuncionarioController struct {
	service *services.FuncionarioService
}

// NewFuncionarioController cria o controller de funcionários
func NewFuncionarioController(service *services.FuncionarioService) *FuncionarioController {
	return &FuncionarioController{service: service}
}

// GetFuncionarios lista os funcionários de uma pizzaria
// GET /api/v1/funcionarios?pizzaria_id=xxx&cargo=motoboy
func (fc *FuncionarioController) GetFuncionarios(c *gin.Context) {
	pizzariaID := c.Query("pizzaria_id")
	if pizzariaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pizzaria_id é obrigatório"})
		return
	}

	funcionarios, err := fc.service.Listar(pizzariaID, models.Cargo(c.Query("cargo")))
	if err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"funcionarios": funcionarios,
		"count":        len(funcionarios),
	})
}

// GetFuncionario busca um funcionário pelo ID
// GET /api/v1/funcionarios/:id
func (fc *FuncionarioController) GetFuncionario(c *gin.Context) {
	funcionario, err := fc.service.Buscar(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, funcionario)
}

// CreateFuncionario cadastra um funcionário novo
// POST /api/v1/funcionarios
func (fc *FuncionarioController) CreateFuncionario(c *gin.Context) {
	var funcionario models.Funcionario
	if err := c.ShouldBindJSON(&funcionario); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Dados inválidos",
			"details": err.Error(),
		})
		return
	}

	if err := fc.service.Criar(&funcionario); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, funcionario)
}

// UpdateFuncionario altera os dados cadastrais
// PUT /api/v1/funcionarios/:id
func (fc *FuncionarioController) UpdateFuncionario(c *gin.Context) {
	var mudancas map[string]interface{}
	if err := c.ShouldBindJSON(&mudancas); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	funcionario, err := fc.service.Atualizar(c.Param("id"), mudancas)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, funcionario)
}

// UpdateStatusFuncionario aplica uma transição de status
// PATCH /api/v1/funcionarios/:id/status
func (fc *FuncionarioController) UpdateStatusFuncionario(c *gin.Context) {
	var req struct {
		Status models.StatusFuncionario `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status é obrigatório"})
		return
	}

	funcionario, err := fc.service.AtualizarStatus(c.Param("id"), req.Status)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, funcionario)
}
