package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzaria/server/internal/services"
)

// responderErro converte os erros de domínio dos serviços nos códigos
// HTTP que os painéis esperam. 409 dispara o descarte da atualização
// otimista no painel, então a fidelidade dos códigos importa.
func responderErro(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNaoEncontrado):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflito):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTransicaoInvalida):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPermissao):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
