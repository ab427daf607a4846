package main

import (
	"log"
	"net/http"
	_ "net/http/pprof" // Profiling de memória
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pizzaria/server/internal/api"
	"pizzaria/server/internal/config"
	"pizzaria/server/internal/database"
	"pizzaria/server/internal/models"
	"pizzaria/server/internal/services"
	"pizzaria/server/internal/utils"
)

func main() {
	// Carrega as variáveis de ambiente do .env se existir (em produção
	// as variáveis vêm do ambiente mesmo)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ Arquivo .env não encontrado, usando variáveis do sistema")
	} else {
		log.Printf("✅ Variáveis de ambiente carregadas do .env")
	}

	cfg := config.Load()

	// Loga a DATABASE_URL sem a senha
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL configurada: %s", safeURL)
	}

	// PostgreSQL
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Printf("❌ Falha na conexão com o PostgreSQL: %v", err)
		log.Printf("⚠️ Continuando sem banco (funcionalidade limitada)")
		db = nil
	} else {
		defer database.ClosePostgres(db)

		if err := models.AutoMigrate(db); err != nil {
			log.Printf("❌ Falha nas migrações: %v", err)
		} else {
			log.Println("✅ Migrações do banco concluídas")
		}
	}

	// Redis (com suporte a Sentinel)
	redisClient, err := database.ConnectRedis(
		cfg.RedisURL,
		cfg.RedisSentinelAddrs,
		cfg.RedisMasterName,
	)
	var redisUtil *utils.RedisClient
	if err != nil {
		log.Printf("⚠️ Falha na conexão com o Redis: %v (continuando sem Redis)", err)
		redisClient = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// Serviço de cardápio com cache em memória e hot-reload
	var cardapioService *services.CardapioService
	if db != nil {
		cardapioService = services.NewCardapioService(db, redisUtil)
		if err := cardapioService.Carregar(); err != nil {
			log.Printf("⚠️ Falha ao carregar o cardápio do banco: %v", err)
		} else {
			// Pub/Sub do Redis + ticker de segurança de 5 minutos
			cardapioService.IniciarAutoReload(5 * time.Minute)
			defer cardapioService.Parar()
		}
	} else {
		log.Println("⚠️ Serviço de cardápio não iniciado: PostgreSQL indisponível")
	}

	// Serviços de cadastro
	var pizzariaService *services.PizzariaService
	var funcionarioService *services.FuncionarioService
	if db != nil {
		pizzariaService = services.NewPizzariaService(db)
		funcionarioService = services.NewFuncionarioService(db)
		log.Println("✅ Serviços de cadastro inicializados")
	} else {
		log.Println("⚠️ Serviços de cadastro não iniciados: PostgreSQL indisponível")
	}

	// Serviço de pedidos (o coração do fluxo da cozinha)
	var pedidoService *services.PedidoService
	if db != nil {
		pedidoService = services.NewPedidoService(db, redisUtil)
		if cardapioService != nil {
			// Itens com item_cardapio_id são validados contra o cache
			pedidoService.SetCardapio(cardapioService)
		}
		log.Println("✅ Serviço de pedidos inicializado")

		// Publicador de eventos no Kafka (os painéis recebem via WS)
		if cfg.KafkaBrokers != "" {
			dialer := api.CreateKafkaDialer(cfg.KafkaUsername, cfg.KafkaPassword, cfg.KafkaCACert)
			publisher := services.NewKafkaPublisher(api.ParseKafkaBrokers(cfg.KafkaBrokers), cfg.KafkaTopic, dialer)
			pedidoService.SetPublicador(publisher)
			defer publisher.Close()
			log.Printf("📡 Publicador Kafka ativo: topic=%s", cfg.KafkaTopic)
		} else {
			log.Println("⚠️ KAFKA_BROKERS não configurado: eventos em tempo real desativados (os painéis dependem do polling)")
		}

		// CRÍTICO: BootstrapState ANTES do consumer Kafka, para os
		// painéis enxergarem os pedidos em andamento após restart
		if redisUtil != nil {
			if err := pedidoService.BootstrapState(); err != nil {
				log.Printf("⚠️ BootstrapState falhou: %v (continuando)", err)
			}
		}
	} else {
		log.Println("⚠️ Serviço de pedidos NÃO inicializado: PostgreSQL indisponível")
	}

	// Arquivamento de pedidos antigos (uma vez por dia)
	if pedidoService != nil {
		go func() {
			// Primeira rodada 1 hora após o boot
			time.Sleep(1 * time.Hour)

			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()

			for {
				if err := pedidoService.ArquivarPedidosAntigos(); err != nil {
					log.Printf("⚠️ Erro no arquivamento de pedidos: %v", err)
				}
				<-ticker.C
			}
		}()
		log.Println("🗄️ Tarefa de arquivamento de pedidos agendada (a cada 24 horas)")
	}

	// Hub WebSocket com salas por pizzaria
	hub := api.NewHub()
	go hub.Run()
	log.Println("📱 Hub WebSocket dos painéis da cozinha ativo")

	// Consumer Kafka -> salas WebSocket (depois do BootstrapState)
	if cfg.KafkaBrokers != "" {
		kafkaConsumer := api.NewKafkaWSConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, hub, redisUtil,
			cfg.KafkaUsername, cfg.KafkaPassword, cfg.KafkaCACert)
		kafkaConsumer.Start()
		defer kafkaConsumer.Stop()
	} else {
		log.Println("⚠️ Kafka WS Consumer não iniciado: KAFKA_BROKERS não configurado")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Health check (antes do CORS, para a plataforma de deploy)
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "Pizzaria Server",
			"version": "1.0.0",
		})
	})

	// Log de todas as requisições
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("🌐 %s %s - Status: %d - Latência: %v", method, path, status, latency)
	})

	// CORS para os painéis
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	apiGroup := r.Group("/api/v1")

	// Pedidos e fluxo da cozinha
	if pedidoService != nil {
		pedidoController := api.NewPedidoController(pedidoService)
		pedidoGroup := apiGroup.Group("/pedidos")
		{
			pedidoGroup.POST("", pedidoController.CreatePedido)
			pedidoGroup.GET("/cozinha", pedidoController.GetPedidosCozinha)
			pedidoGroup.GET("/:id", pedidoController.GetPedido)
			pedidoGroup.PATCH("/:id/status", pedidoController.UpdateStatus)
			pedidoGroup.PATCH("/:id/progresso", pedidoController.UpdateProgresso)
			pedidoGroup.POST("/:id/iniciar-preparo", pedidoController.IniciarPreparo)
			pedidoGroup.POST("/:id/confirmar-pizza", pedidoController.ConfirmarPizza)
			pedidoGroup.POST("/:id/despachar", pedidoController.Despachar)
			pedidoGroup.POST("/:id/liberar-retirada", pedidoController.LiberarRetirada)
			pedidoGroup.POST("/:id/confirmar-pagamento", pedidoController.ConfirmarPagamento)
			pedidoGroup.POST("/:id/cancelar", pedidoController.Cancelar)
		}
		apiGroup.GET("/pizzarias/:id/motoboys", pedidoController.GetMotoboys)
		log.Println("🍕 Endpoints de pedidos habilitados: /api/v1/pedidos")
	} else {
		log.Println("⚠️ Endpoints de pedidos NÃO habilitados: serviço indisponível")
	}

	// Pizzarias e cardápio
	if pizzariaService != nil {
		pizzariaController := api.NewPizzariaController(pizzariaService)
		pizzariaGroup := apiGroup.Group("/pizzarias")
		{
			pizzariaGroup.GET("", pizzariaController.GetPizzarias)
			pizzariaGroup.GET("/:id", pizzariaController.GetPizzaria)
			pizzariaGroup.POST("", pizzariaController.CreatePizzaria)
			pizzariaGroup.PUT("/:id", pizzariaController.UpdatePizzaria)
		}

		if cardapioService != nil {
			cardapioController := api.NewCardapioController(cardapioService)
			pizzariaGroup.GET("/:id/cardapio", cardapioController.GetCardapio)
			pizzariaGroup.POST("/:id/cardapio", cardapioController.CreateItem)
			pizzariaGroup.DELETE("/:id/cardapio/:itemId", cardapioController.DeleteItem)
		}
		log.Println("🏪 Endpoints de pizzarias habilitados: /api/v1/pizzarias")
	}

	// Funcionários
	if funcionarioService != nil {
		funcionarioController := api.NewFuncionarioController(funcionarioService)
		funcionarioGroup := apiGroup.Group("/funcionarios")
		{
			funcionarioGroup.GET("", funcionarioController.GetFuncionarios)
			funcionarioGroup.GET("/:id", funcionarioController.GetFuncionario)
			funcionarioGroup.POST("", funcionarioController.CreateFuncionario)
			funcionarioGroup.PUT("/:id", funcionarioController.UpdateFuncionario)
			funcionarioGroup.PATCH("/:id/status", funcionarioController.UpdateStatusFuncionario)
		}
		log.Println("👥 Endpoints de funcionários habilitados: /api/v1/funcionarios")
	}

	// Admin (hot-reload do cardápio e estatísticas)
	if cardapioService != nil {
		adminController := api.NewAdminController(cardapioService, hub)
		adminGroup := apiGroup.Group("/admin")
		{
			adminGroup.POST("/reload-cardapio", adminController.ReloadCardapio)
			adminGroup.GET("/stats", adminController.GetStats)
		}
		log.Println("🔧 Endpoints de admin habilitados: /api/v1/admin")
	}

	// WebSocket dos painéis da cozinha
	wsController := api.NewWSController(hub)
	apiGroup.GET("/ws", wsController.ServeWS)

	// pprof em porta separada (profiling de memória)
	go func() {
		pprofPort := "6060"
		log.Printf("🔍 pprof disponível em http://localhost:%s/debug/pprof/", pprofPort)
		if err := http.ListenAndServe("localhost:"+pprofPort, nil); err != nil {
			log.Printf("⚠️ Falha ao subir o pprof: %v", err)
		}
	}()

	// Estatísticas de memória periódicas
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			logMemoryStats()
		}
	}()

	port := cfg.ServerPort
	log.Printf("🚀 Servidor subindo na porta %s", port)
	log.Printf("📡 API disponível em http://0.0.0.0:%s/api/v1", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("Falha ao subir o servidor: %v", err)
	}
}

// logMemoryStats loga o uso de memória atual
func logMemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	heapAllocMB := float64(m.HeapAlloc) / 1024 / 1024
	heapSysMB := float64(m.HeapSys) / 1024 / 1024
	numGoroutines := runtime.NumGoroutine()

	log.Printf("💾 Memória: HeapAlloc=%.2f MB, HeapSys=%.2f MB, GC=%d, Goroutines=%d",
		heapAllocMB, heapSysMB, m.NumGC, numGoroutines)

	if numGoroutines > 100 {
		log.Printf("⚠️ ATENÇÃO: muitas goroutines: %d (possível vazamento)", numGoroutines)
	}
}
