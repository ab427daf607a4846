package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cargo representa a função do funcionário na pizzaria
type Cargo string

const (
	CargoPizzaiolo Cargo = "pizzaiolo"
	CargoAtendente Cargo = "atendente"
	CargoMotoboy   Cargo = "motoboy"
	CargoAdmin     Cargo = "admin"
)

// CargoValido verifica se o cargo existe
func CargoValido(c Cargo) bool {
	switch c {
	case CargoPizzaiolo, CargoAtendente, CargoMotoboy, CargoAdmin:
		return true
	}
	return false
}

// StatusFuncionario representa o status do funcionário
type StatusFuncionario string

const (
	FuncionarioAtivo     StatusFuncionario = "ativo"
	FuncionarioAfastado  StatusFuncionario = "afastado"
	FuncionarioDesligado StatusFuncionario = "desligado"
)

// Funcionario representa um funcionário da pizzaria.
// Motoboys são funcionários com cargo "motoboy": a listagem de entregadores
// disponíveis para despacho filtra por esse cargo.
type Funcionario struct {
	ID         string            `json:"id" gorm:"type:uuid;primaryKey"`
	PizzariaID string            `json:"pizzaria_id" gorm:"type:uuid;index;not null"`
	Nome       string            `json:"nome" gorm:"type:varchar(255);not null"`
	Telefone   string            `json:"telefone" gorm:"type:varchar(20);uniqueIndex;not null"`
	Cargo      Cargo             `json:"cargo" gorm:"type:varchar(50);not null;default:'atendente';index"`
	Status     StatusFuncionario `json:"status" gorm:"type:varchar(20);default:'ativo'"`
	CreatedAt  time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt    `json:"-" gorm:"index"`

	Pizzaria *Pizzaria `json:"pizzaria,omitempty" gorm:"foreignKey:PizzariaID;references:ID"`
}

// TableName indica o nome da tabela
func (Funcionario) TableName() string {
	return "funcionarios"
}

// BeforeCreate gera UUID
func (f *Funcionario) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// CanTransitionTo verifica se a transição de status é permitida (State Machine)
// Desligado é terminal: não volta para ativo nem afastado.
func (f *Funcionario) CanTransitionTo(novo StatusFuncionario) bool {
	if f.Status == FuncionarioDesligado {
		return false
	}

	permitidas := map[StatusFuncionario][]StatusFuncionario{
		FuncionarioAtivo:    {FuncionarioAfastado, FuncionarioDesligado},
		FuncionarioAfastado: {FuncionarioAtivo, FuncionarioDesligado},
	}

	for _, s := range permitidas[f.Status] {
		if s == novo {
			return true
		}
	}
	return false
}
