package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"pizzaria/server/internal/models"
)

// PizzariaService gerencia o cadastro das unidades
type PizzariaService struct {
	db *gorm.DB
}

// NewPizzariaService cria o serviço de pizzarias
func NewPizzariaService(db *gorm.DB) *PizzariaService {
	return &PizzariaService{db: db}
}

// Criar cadastra uma pizzaria nova
func (s *PizzariaService) Criar(pizzaria *models.Pizzaria) error {
	if pizzaria.Nome == "" {
		return fmt.Errorf("pizzaria sem nome")
	}

	if err := s.db.Create(pizzaria).Error; err != nil {
		return fmt.Errorf("erro ao cadastrar pizzaria: %w", err)
	}

	log.Printf("🏪 Pizzaria %s cadastrada (id: %s)", pizzaria.Nome, pizzaria.ID)
	return nil
}

// Listar retorna todas as pizzarias
func (s *PizzariaService) Listar() ([]models.Pizzaria, error) {
	var pizzarias []models.Pizzaria
	if err := s.db.Order("nome ASC").Find(&pizzarias).Error; err != nil {
		return nil, fmt.Errorf("erro ao listar pizzarias: %w", err)
	}
	return pizzarias, nil
}

// Buscar busca uma pizzaria pelo ID
func (s *PizzariaService) Buscar(id string) (*models.Pizzaria, error) {
	var pizzaria models.Pizzaria
	if err := s.db.First(&pizzaria, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar pizzaria: %w", err)
	}
	return &pizzaria, nil
}

// Atualizar altera os dados cadastrais da pizzaria
func (s *PizzariaService) Atualizar(id string, mudancas map[string]interface{}) (*models.Pizzaria, error) {
	pizzaria, err := s.Buscar(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(pizzaria).Updates(mudancas).Error; err != nil {
		return nil, fmt.Errorf("erro ao atualizar pizzaria: %w", err)
	}
	return pizzaria, nil
}
