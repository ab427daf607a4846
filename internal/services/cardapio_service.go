package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/utils"
)

// Canal do Redis usado para avisar todas as instâncias que o cardápio
// mudou e o cache em memória precisa ser recarregado
const CanalReloadCardapio = "cardapio:reload"

// CardapioService mantém o cardápio em cache de memória, com recarga
// via Pub/Sub do Redis e um ticker de segurança caso a mensagem se perca
type CardapioService struct {
	db        *gorm.DB
	redisUtil *utils.RedisClient
	parar     chan struct{}
}

// NewCardapioService cria o serviço de cardápio
func NewCardapioService(db *gorm.DB, redisUtil *utils.RedisClient) *CardapioService {
	return &CardapioService{
		db:        db,
		redisUtil: redisUtil,
		parar:     make(chan struct{}),
	}
}

// Carregar lê o cardápio completo do banco e popula o cache em memória
func (cs *CardapioService) Carregar() error {
	var itens []models.ItemCardapio
	if err := cs.db.Preload("Componentes").Order("pizzaria_id, categoria, nome").Find(&itens).Error; err != nil {
		return fmt.Errorf("erro ao carregar cardápio: %w", err)
	}

	porPizzaria := make(map[string][]models.ItemCardapio)
	for _, item := range itens {
		porPizzaria[item.PizzariaID] = append(porPizzaria[item.PizzariaID], item)
	}
	models.SetCardapio(porPizzaria)

	log.Printf("📋 Cardápio carregado: %d itens em %d pizzarias", len(itens), len(porPizzaria))
	return nil
}

// Listar retorna o cardápio em cache de uma pizzaria
func (cs *CardapioService) Listar(pizzariaID string) []models.ItemCardapio {
	return models.GetCardapio(pizzariaID)
}

// BuscarItem busca um item do cardápio em cache
func (cs *CardapioService) BuscarItem(pizzariaID, itemID string) (*models.ItemCardapio, error) {
	item, ok := models.GetItemCardapio(pizzariaID, itemID)
	if !ok {
		return nil, ErrNaoEncontrado
	}
	return &item, nil
}

// Salvar cria ou atualiza um item do cardápio e notifica as instâncias
func (cs *CardapioService) Salvar(item *models.ItemCardapio) error {
	if item.Nome == "" {
		return fmt.Errorf("item do cardápio sem nome")
	}
	if item.PizzariaID == "" {
		return fmt.Errorf("item do cardápio sem pizzaria")
	}

	if err := cs.db.Save(item).Error; err != nil {
		return fmt.Errorf("erro ao salvar item do cardápio: %w", err)
	}

	cs.NotificarReload()
	return nil
}

// Remover apaga um item do cardápio e notifica as instâncias
func (cs *CardapioService) Remover(itemID string) error {
	resultado := cs.db.Delete(&models.ItemCardapio{}, "id = ?", itemID)
	if resultado.Error != nil {
		return fmt.Errorf("erro ao remover item do cardápio: %w", resultado.Error)
	}
	if resultado.RowsAffected == 0 {
		return ErrNaoEncontrado
	}

	cs.NotificarReload()
	return nil
}

// NotificarReload publica o aviso de recarga no canal do Redis. A própria
// instância também recarrega na hora, sem esperar a mensagem voltar.
func (cs *CardapioService) NotificarReload() {
	if err := cs.Carregar(); err != nil {
		log.Printf("⚠️ Erro na recarga local do cardápio: %v", err)
	}

	if cs.redisUtil == nil {
		return
	}
	if err := cs.redisUtil.Publish(CanalReloadCardapio, "reload"); err != nil {
		log.Printf("⚠️ Erro ao publicar reload do cardápio no Redis: %v", err)
	}
}

// IniciarAutoReload assina o canal de reload e liga o ticker de segurança.
// O ticker cobre o caso de mensagem Pub/Sub perdida (reconexão do Redis).
func (cs *CardapioService) IniciarAutoReload(intervaloSeguranca time.Duration) {
	if cs.redisUtil != nil {
		canal, fechar := cs.redisUtil.Subscribe(CanalReloadCardapio)
		go func() {
			defer fechar()
			for {
				select {
				case msg, ok := <-canal:
					if !ok {
						log.Printf("⚠️ Assinatura do reload de cardápio encerrada")
						return
					}
					log.Printf("🔄 Reload de cardápio recebido via Redis (%s)", msg.Channel)
					if err := cs.Carregar(); err != nil {
						log.Printf("⚠️ Erro ao recarregar cardápio: %v", err)
					}
				case <-cs.parar:
					return
				}
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(intervaloSeguranca)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cs.Carregar(); err != nil {
					log.Printf("⚠️ Erro na recarga periódica do cardápio: %v", err)
				}
			case <-cs.parar:
				return
			}
		}
	}()

	log.Printf("🔄 Auto-reload do cardápio ativo (segurança a cada %v)", intervaloSeguranca)
}

// Parar encerra as goroutines de auto-reload
func (cs *CardapioService) Parar() {
	close(cs.parar)
}

// ValidarItens confere os itens de um pedido contra o cardápio em cache.
// Itens sem item_cardapio_id passam direto (itens avulsos digitados no
// balcão).
func (cs *CardapioService) ValidarItens(pizzariaID string, itens models.ItensPedido) error {
	for _, item := range itens {
		if item.ItemCardapioID == "" {
			continue
		}
		if _, ok := models.GetItemCardapio(pizzariaID, item.ItemCardapioID); !ok {
			return fmt.Errorf("item '%s' não existe no cardápio: %w", item.Nome, ErrNaoEncontrado)
		}
	}
	return nil
}
