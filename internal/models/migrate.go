package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate cria/atualiza as tabelas no banco.
// A ordem importa: Pizzaria primeiro (Funcionario e Pedido referenciam ela).
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Pizzaria{}); err != nil {
		log.Printf("❌ AutoMigrate de Pizzaria falhou: %v", err)
		return err
	}

	if err := db.AutoMigrate(&Funcionario{}); err != nil {
		log.Printf("❌ AutoMigrate de Funcionario falhou: %v", err)
		return err
	}

	if err := db.AutoMigrate(&ItemCardapio{}, &ComponenteCardapio{}); err != nil {
		log.Printf("❌ AutoMigrate do cardápio falhou: %v", err)
		return err
	}

	if err := db.AutoMigrate(&Pedido{}); err != nil {
		log.Printf("❌ AutoMigrate de Pedido falhou: %v", err)
		return err
	}

	// Índice composto usado pela visão da cozinha (status ativos por pizzaria)
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_pedidos_pizzaria_status ON pedidos (pizzaria_id, status, created_at)`).Error; err != nil {
		log.Printf("⚠️ Criação do índice idx_pedidos_pizzaria_status: %v", err)
	}

	return nil
}
