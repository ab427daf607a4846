package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemCardapio é um item do cardápio de uma pizzaria
type ItemCardapio struct {
	ID         string        `json:"id" gorm:"type:uuid;primaryKey"`
	PizzariaID string        `json:"pizzaria_id" gorm:"type:uuid;index;not null"`
	Nome       string        `json:"nome" gorm:"type:varchar(255);not null;index"`
	Descricao  string        `json:"descricao" gorm:"type:text"`
	Categoria  CategoriaItem `json:"categoria" gorm:"type:varchar(20);not null;index"`
	Preco      int           `json:"preco" gorm:"not null"` // Em centavos
	Ativo      bool          `json:"ativo" gorm:"default:true"`
	CreatedAt  time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// Composição do combo (apenas categoria "combo")
	Componentes []ComponenteCardapio `json:"componentes,omitempty" gorm:"foreignKey:ComboID;references:ID"`
}

// ComponenteCardapio descreve um item que compõe um combo do cardápio
type ComponenteCardapio struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	ComboID    string        `json:"combo_id" gorm:"type:uuid;index;not null"`
	Nome       string        `json:"nome" gorm:"type:varchar(255);not null"`
	Categoria  CategoriaItem `json:"categoria" gorm:"type:varchar(20);not null"`
	Quantidade int           `json:"quantidade" gorm:"not null;default:1"`
}

// TableName indica o nome da tabela
func (ItemCardapio) TableName() string {
	return "itens_cardapio"
}

func (ComponenteCardapio) TableName() string {
	return "componentes_cardapio"
}

// BeforeCreate gera UUID
func (i *ItemCardapio) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// Cache em memória do cardápio, indexado por pizzaria.
// Protegido por mutex: o reload via Pub/Sub roda em goroutine própria.
var (
	cardapioMu    sync.RWMutex
	cardapioCache = map[string][]ItemCardapio{}
)

// SetCardapio substitui atomicamente o cache do cardápio
func SetCardapio(porPizzaria map[string][]ItemCardapio) {
	cardapioMu.Lock()
	cardapioCache = porPizzaria
	cardapioMu.Unlock()
}

// GetCardapio retorna uma cópia do cardápio de uma pizzaria (thread-safe)
func GetCardapio(pizzariaID string) []ItemCardapio {
	cardapioMu.RLock()
	defer cardapioMu.RUnlock()
	itens := cardapioCache[pizzariaID]
	copia := make([]ItemCardapio, len(itens))
	copy(copia, itens)
	return copia
}

// GetItemCardapio busca um item do cardápio pelo ID (thread-safe)
func GetItemCardapio(pizzariaID, itemID string) (ItemCardapio, bool) {
	cardapioMu.RLock()
	defer cardapioMu.RUnlock()
	for _, item := range cardapioCache[pizzariaID] {
		if item.ID == itemID {
			return item, true
		}
	}
	return ItemCardapio{}, false
}
