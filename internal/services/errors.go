package services

import "errors"

// Erros sentinela dos serviços. Os controllers mapeiam cada um para o
// status HTTP correspondente (409, 400, 403, 404).
var (
	// ErrConflito: outro funcionário já assumiu ou avançou o pedido
	ErrConflito = errors.New("pedido já assumido por outro funcionário")

	// ErrTransicaoInvalida: a mudança de status viola a máquina de estados
	ErrTransicaoInvalida = errors.New("transição de status não permitida")

	// ErrPermissao: o funcionário não pode agir sobre este pedido/pizzaria
	ErrPermissao = errors.New("funcionário sem permissão para esta operação")

	// ErrNaoEncontrado: registro inexistente
	ErrNaoEncontrado = errors.New("registro não encontrado")
)
