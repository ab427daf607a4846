package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"pizzaria/server/internal/models"
)

// FuncionarioService gerencia o cadastro da equipe da pizzaria
type FuncionarioService struct {
	db *gorm.DB
}

// NewFuncionarioService cria o serviço de funcionários
func NewFuncionarioService(db *gorm.DB) *FuncionarioService {
	return &FuncionarioService{db: db}
}

// Criar cadastra um funcionário novo com status ativo
func (fs *FuncionarioService) Criar(funcionario *models.Funcionario) error {
	if funcionario.Nome == "" {
		return fmt.Errorf("funcionário sem nome")
	}
	if funcionario.PizzariaID == "" {
		return fmt.Errorf("funcionário sem pizzaria")
	}
	if !models.CargoValido(funcionario.Cargo) {
		return fmt.Errorf("cargo inválido: %s", funcionario.Cargo)
	}

	if funcionario.Status == "" {
		funcionario.Status = models.FuncionarioAtivo
	}

	if err := fs.db.Create(funcionario).Error; err != nil {
		return fmt.Errorf("erro ao cadastrar funcionário: %w", err)
	}

	log.Printf("👤 Funcionário %s (%s) cadastrado na pizzaria %s", funcionario.Nome, funcionario.Cargo, funcionario.PizzariaID)
	return nil
}

// Listar retorna os funcionários de uma pizzaria, com filtro opcional de cargo
func (fs *FuncionarioService) Listar(pizzariaID string, cargo models.Cargo) ([]models.Funcionario, error) {
	query := fs.db.Where("pizzaria_id = ?", pizzariaID)
	if cargo != "" {
		query = query.Where("cargo = ?", cargo)
	}

	var funcionarios []models.Funcionario
	if err := query.Order("nome ASC").Find(&funcionarios).Error; err != nil {
		return nil, fmt.Errorf("erro ao listar funcionários: %w", err)
	}
	return funcionarios, nil
}

// Buscar busca um funcionário pelo ID
func (fs *FuncionarioService) Buscar(id string) (*models.Funcionario, error) {
	var funcionario models.Funcionario
	if err := fs.db.First(&funcionario, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar funcionário: %w", err)
	}
	return &funcionario, nil
}

// Atualizar altera os dados cadastrais (nome, telefone, cargo)
func (fs *FuncionarioService) Atualizar(id string, mudancas map[string]interface{}) (*models.Funcionario, error) {
	funcionario, err := fs.Buscar(id)
	if err != nil {
		return nil, err
	}

	if cargo, ok := mudancas["cargo"].(string); ok && !models.CargoValido(models.Cargo(cargo)) {
		return nil, fmt.Errorf("cargo inválido: %s", cargo)
	}

	// Status tem máquina de estados própria, não entra no update genérico
	delete(mudancas, "status")

	if err := fs.db.Model(funcionario).Updates(mudancas).Error; err != nil {
		return nil, fmt.Errorf("erro ao atualizar funcionário: %w", err)
	}
	return funcionario, nil
}

// AtualizarStatus aplica uma transição de status do funcionário
// (ativo <-> afastado, qualquer um -> desligado; desligado é terminal)
func (fs *FuncionarioService) AtualizarStatus(id string, novo models.StatusFuncionario) (*models.Funcionario, error) {
	funcionario, err := fs.Buscar(id)
	if err != nil {
		return nil, err
	}

	if !funcionario.CanTransitionTo(novo) {
		return nil, ErrTransicaoInvalida
	}

	if err := fs.db.Model(funcionario).Update("status", novo).Error; err != nil {
		return nil, fmt.Errorf("erro ao atualizar status do funcionário: %w", err)
	}
	funcionario.Status = novo

	log.Printf("👤 Funcionário %s: status -> %s", funcionario.Nome, novo)
	return funcionario, nil
}
