package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pizzaria representa uma unidade/loja (sistema multi-tenant)
type Pizzaria struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	Nome      string         `json:"nome" gorm:"type:varchar(255);not null"`
	Endereco  string         `json:"endereco" gorm:"type:text"`
	Telefone  string         `json:"telefone" gorm:"type:varchar(20)"`
	Email     string         `json:"email" gorm:"type:varchar(255)"`
	Ativa     bool           `json:"ativa" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName indica o nome da tabela
func (Pizzaria) TableName() string {
	return "pizzarias"
}

// BeforeCreate gera UUID
func (p *Pizzaria) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
