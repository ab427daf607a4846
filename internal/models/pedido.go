package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusPedido representa o status de um pedido no fluxo da cozinha
type StatusPedido string

const (
	StatusRecebido       StatusPedido = "recebido"
	StatusPreparando     StatusPedido = "preparando"
	StatusFinalizado     StatusPedido = "finalizado"
	StatusPronto         StatusPedido = "pronto"
	StatusSaiuEntrega    StatusPedido = "saiu_entrega"
	StatusEntregue       StatusPedido = "entregue"
	StatusFinalizadoPago StatusPedido = "finalizado_pago"
	StatusCancelado      StatusPedido = "cancelado"
	StatusArquivado      StatusPedido = "arquivado"
)

// TipoPedido representa o tipo de entrega do pedido
type TipoPedido string

const (
	TipoDelivery TipoPedido = "delivery"
	TipoRetirada TipoPedido = "retirada"
)

// StatusAtivos são os status que aparecem na visão da cozinha
var StatusAtivos = []StatusPedido{
	StatusRecebido, StatusPreparando, StatusFinalizado,
	StatusPronto, StatusSaiuEntrega, StatusEntregue,
}

// Pedido representa um pedido do cliente percorrendo o fluxo da cozinha
type Pedido struct {
	ID         string       `json:"id" gorm:"type:uuid;primaryKey"`
	PizzariaID string       `json:"pizzaria_id" gorm:"type:uuid;index;not null"`
	Numero     int          `json:"numero" gorm:"not null;index"` // Número sequencial por pizzaria
	Status     StatusPedido `json:"status" gorm:"type:varchar(20);not null;default:'recebido';index"`
	Tipo       TipoPedido   `json:"tipo" gorm:"type:varchar(10);not null;default:'delivery'"`

	// Dados do cliente (endereço apenas para delivery)
	NomeCliente     string `json:"nome_cliente" gorm:"type:varchar(255)"`
	TelefoneCliente string `json:"telefone_cliente" gorm:"type:varchar(20)"`
	EnderecoEntrega string `json:"endereco_entrega" gorm:"type:text"`

	Itens ItensPedido `json:"itens" gorm:"type:jsonb"`

	// Valores em centavos
	Subtotal    int `json:"subtotal"`
	TaxaEntrega int `json:"taxa_entrega"`
	Total       int `json:"total"`

	Observacoes   string `json:"observacoes" gorm:"type:text"`
	TempoEstimado string `json:"tempo_estimado" gorm:"type:varchar(50)"` // Texto livre, ex: "30-40"

	// Pizzaiolo que assumiu o preparo (soft lock, sem expiração)
	PizzaioloID *string      `json:"pizzaiolo_id" gorm:"type:uuid;index"`
	Pizzaiolo   *Funcionario `json:"pizzaiolo,omitempty" gorm:"foreignKey:PizzaioloID;references:ID"`

	// Motoboy atribuído no despacho (apenas delivery)
	MotoboyID *string      `json:"motoboy_id" gorm:"type:uuid;index"`
	Motoboy   *Funcionario `json:"motoboy,omitempty" gorm:"foreignKey:MotoboyID;references:ID"`

	// Progresso por pizza em cada etapa de confirmação
	// (preparo e conferência são passagens independentes)
	ProgressoPizzas      ProgressoPizzas `json:"progresso_pizzas" gorm:"type:jsonb"`
	ProgressoConferencia ProgressoPizzas `json:"progresso_conferencia" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Timestamps por status
	PreparoIniciadoEm *time.Time `json:"preparo_iniciado_em,omitempty"`
	FinalizadoEm      *time.Time `json:"finalizado_em,omitempty"`
	ProntoEm          *time.Time `json:"pronto_em,omitempty"`
	SaiuEntregaEm     *time.Time `json:"saiu_entrega_em,omitempty"`
	EntregueEm        *time.Time `json:"entregue_em,omitempty"`
	PagoEm            *time.Time `json:"pago_em,omitempty"`
	CanceladoEm       *time.Time `json:"cancelado_em,omitempty"`

	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName indica o nome da tabela
func (Pedido) TableName() string {
	return "pedidos"
}

// BeforeCreate gera UUID
func (p *Pedido) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// NumeroExibicao formata o número sequencial para exibição (mínimo 3 dígitos)
// Ex: 7 -> "007", 123 -> "123"
func (p *Pedido) NumeroExibicao() string {
	return FormatarNumeroPedido(p.Numero)
}

// FormatarNumeroPedido formata um número de pedido com zeros à esquerda
func FormatarNumeroPedido(n int) string {
	return fmt.Sprintf("%03d", n)
}

// transicoesPermitidas define a máquina de estados do pedido.
// As transições com porta automática (preparando->finalizado e
// finalizado->pronto) são validadas aqui apenas quanto à ordem;
// a pré-condição de progresso completo é verificada no service.
var transicoesPermitidas = map[StatusPedido][]StatusPedido{
	StatusRecebido:    {StatusPreparando, StatusCancelado},
	StatusPreparando:  {StatusFinalizado, StatusCancelado},
	StatusFinalizado:  {StatusPronto},
	StatusPronto:      {StatusSaiuEntrega, StatusEntregue},
	StatusSaiuEntrega: {StatusEntregue},
	StatusEntregue:    {StatusFinalizadoPago},
}

// CanTransitionTo verifica se a transição de status é permitida (State Machine)
// Considera o tipo do pedido na bifurcação em "pronto":
// delivery exige passar por saiu_entrega, retirada vai direto para entregue.
func (p *Pedido) CanTransitionTo(novo StatusPedido) bool {
	// Status terminais: nunca saem do lugar
	if p.Status == StatusFinalizadoPago || p.Status == StatusCancelado || p.Status == StatusArquivado {
		return false
	}

	if p.Status == StatusPronto {
		switch novo {
		case StatusSaiuEntrega:
			return p.Tipo == TipoDelivery
		case StatusEntregue:
			return p.Tipo == TipoRetirada
		default:
			return false
		}
	}

	for _, permitido := range transicoesPermitidas[p.Status] {
		if permitido == novo {
			return true
		}
	}
	return false
}

// Terminal informa se o pedido chegou a um status final
func (p *Pedido) Terminal() bool {
	return p.Status == StatusFinalizadoPago || p.Status == StatusCancelado || p.Status == StatusArquivado
}

// ProgressoPizzas mapeia a chave de cada unidade de preparo para a flag
// de finalizada. Persistido como JSONB junto do pedido.
type ProgressoPizzas map[string]bool

// Value implementa driver.Valuer para o gorm
func (pp ProgressoPizzas) Value() (driver.Value, error) {
	if pp == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(pp)
}

// Scan implementa sql.Scanner para o gorm
func (pp *ProgressoPizzas) Scan(value interface{}) error {
	if value == nil {
		*pp = ProgressoPizzas{}
		return nil
	}
	var dados []byte
	switch v := value.(type) {
	case []byte:
		dados = v
	case string:
		dados = []byte(v)
	default:
		return fmt.Errorf("tipo inesperado para ProgressoPizzas: %T", value)
	}
	if len(dados) == 0 {
		*pp = ProgressoPizzas{}
		return nil
	}
	return json.Unmarshal(dados, pp)
}

// Completo verifica se TODAS as unidades informadas estão finalizadas.
// Um conjunto vazio de unidades nunca é considerado completo: pedidos sem
// pizzas não avançam pela porta automática (caminho manual via PATCH de status).
func (pp ProgressoPizzas) Completo(unidades []UnidadePreparo) bool {
	if len(unidades) == 0 {
		return false
	}
	for _, u := range unidades {
		if !pp[u.Chave] {
			return false
		}
	}
	return true
}

// Podar remove chaves que não correspondem mais a nenhuma unidade atual
// (ex: pedido editado). Chaves obsoletas são descartadas em silêncio.
func (pp ProgressoPizzas) Podar(unidades []UnidadePreparo) ProgressoPizzas {
	validas := make(map[string]bool, len(unidades))
	for _, u := range unidades {
		validas[u.Chave] = true
	}
	resultado := make(ProgressoPizzas, len(pp))
	for chave, ok := range pp {
		if validas[chave] {
			resultado[chave] = ok
		}
	}
	return resultado
}
