package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"pizzaria/server/internal/services"
)

// AdminController concentra as operações administrativas (hot-reload do
// cardápio, estatísticas do servidor)
type AdminController struct {
	cardapioService *services.CardapioService
	hub             *Hub
	inicio          time.Time
}

// NewAdminController cria o controller administrativo
func NewAdminController(cardapioService *services.CardapioService, hub *Hub) *AdminController {
	return &AdminController{
		cardapioService: cardapioService,
		hub:             hub,
		inicio:          time.Now(),
	}
}

// ReloadCardapio força a recarga do cardápio em TODAS as instâncias
// via Redis Pub/Sub, sem restart
// POST /api/v1/admin/reload-cardapio
func (ac *AdminController) ReloadCardapio(c *gin.Context) {
	ac.cardapioService.NotificarReload()

	c.JSON(http.StatusOK, gin.H{
		"message": "Cardápio recarregado (broadcast via Redis para todas as instâncias)",
		"method":  "redis_pubsub",
	})
}

// GetStats retorna estatísticas do servidor para monitoramento
// GET /api/v1/admin/stats
func (ac *AdminController) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"uptime":         time.Since(ac.inicio).String(),
		"paineis_online": ac.hub.TotalClientes(),
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  m.HeapAlloc / 1024 / 1024,
		"heap_sys_mb":    m.HeapSys / 1024 / 1024,
		"gc_runs":        m.NumGC,
		"next_gc_mb":     m.NextGC / 1024 / 1024,
	})
}
