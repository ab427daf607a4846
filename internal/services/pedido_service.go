package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/utils"
)

// Etapas de confirmação por pizza. O preparo e a conferência são passagens
// independentes: cada uma tem seu próprio mapa de progresso e sua própria
// porta automática de transição.
const (
	EtapaPreparo     = "preparo"
	EtapaConferencia = "conferencia"
)

// PedidoService gerencia o fluxo dos pedidos na cozinha
type PedidoService struct {
	db        *gorm.DB
	redisUtil *utils.RedisClient
	publisher PublicadorEventos
	cardapio  *CardapioService
}

// NewPedidoService cria o serviço de pedidos
func NewPedidoService(db *gorm.DB, redisUtil *utils.RedisClient) *PedidoService {
	return &PedidoService{
		db:        db,
		redisUtil: redisUtil,
	}
}

// SetPublicador injeta o publicador de eventos (Kafka)
func (ps *PedidoService) SetPublicador(pub PublicadorEventos) {
	ps.publisher = pub
}

// SetCardapio injeta o serviço de cardápio para validar os itens dos
// pedidos novos contra o cache
func (ps *PedidoService) SetCardapio(cardapio *CardapioService) {
	ps.cardapio = cardapio
}

// CriarPedidoRequest são os dados de entrada do fluxo de pedido
type CriarPedidoRequest struct {
	PizzariaID      string             `json:"pizzaria_id" binding:"required"`
	Tipo            models.TipoPedido  `json:"tipo" binding:"required"`
	NomeCliente     string             `json:"nome_cliente"`
	TelefoneCliente string             `json:"telefone_cliente"`
	EnderecoEntrega string             `json:"endereco_entrega"`
	Itens           models.ItensPedido `json:"itens" binding:"required"`
	TaxaEntrega     int                `json:"taxa_entrega"`
	Observacoes     string             `json:"observacoes"`
	TempoEstimado   string             `json:"tempo_estimado"`
}

// CriarPedido registra um novo pedido com status "recebido"
func (ps *PedidoService) CriarPedido(req CriarPedidoRequest) (*models.Pedido, error) {
	if req.Tipo != models.TipoDelivery && req.Tipo != models.TipoRetirada {
		return nil, fmt.Errorf("tipo de pedido inválido: %s", req.Tipo)
	}
	if req.Tipo == models.TipoDelivery && req.EnderecoEntrega == "" {
		return nil, fmt.Errorf("pedido delivery exige endereço de entrega")
	}
	if len(req.Itens) == 0 {
		return nil, fmt.Errorf("pedido sem itens")
	}

	subtotal := 0
	for _, item := range req.Itens {
		if item.Quantidade <= 0 {
			return nil, fmt.Errorf("quantidade inválida no item '%s'", item.Nome)
		}
		subtotal += item.PrecoUnitario * item.Quantidade
	}

	if ps.cardapio != nil {
		if err := ps.cardapio.ValidarItens(req.PizzariaID, req.Itens); err != nil {
			return nil, err
		}
	}

	numero, temNumero := ps.numeroDoContador(req.PizzariaID)

	pedido := &models.Pedido{
		PizzariaID:      req.PizzariaID,
		Numero:          numero,
		Status:          models.StatusRecebido,
		Tipo:            req.Tipo,
		NomeCliente:     req.NomeCliente,
		TelefoneCliente: req.TelefoneCliente,
		EnderecoEntrega: req.EnderecoEntrega,
		Itens:           req.Itens,
		Subtotal:        subtotal,
		TaxaEntrega:     req.TaxaEntrega,
		Total:           subtotal + req.TaxaEntrega,
		Observacoes:     req.Observacoes,
		TempoEstimado:   req.TempoEstimado,
	}

	err := ps.executarSerializable(func(tx *gorm.DB) error {
		// Fallback do número dentro da transação serializável: duas
		// criações concorrentes com o Redis fora conflitam e a que
		// refizer a transação lê o MAX já atualizado
		if !temNumero {
			n, err := proximoNumeroBanco(tx, req.PizzariaID)
			if err != nil {
				return err
			}
			pedido.Numero = n
		}
		return tx.Create(pedido).Error
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao salvar pedido: %w", err)
	}

	ps.cachearPedido(pedido)
	ps.publicar(models.EventoNovoPedido, pedido)

	log.Printf("🍕 Pedido %s criado na pizzaria %s (tipo: %s)", pedido.NumeroExibicao(), pedido.PizzariaID, pedido.Tipo)
	return pedido, nil
}

// numeroDoContador gera o número sequencial de exibição pelo contador
// no Redis. Retorna false se o Redis estiver fora; nesse caso o número
// sai do banco, dentro da transação de criação.
func (ps *PedidoService) numeroDoContador(pizzariaID string) (int, bool) {
	if ps.redisUtil == nil {
		return 0, false
	}
	n, err := ps.redisUtil.Increment(fmt.Sprintf("pizzaria:%s:pedidos:contador", pizzariaID))
	if err != nil {
		log.Printf("⚠️ Contador no Redis indisponível, usando fallback do banco: %v", err)
		return 0, false
	}
	return int(n), true
}

// proximoNumeroBanco calcula o próximo número a partir do maior já
// gravado na pizzaria. Só faz sentido dentro de uma transação
// serializável, senão duas criações concorrentes leem o mesmo MAX.
func proximoNumeroBanco(tx *gorm.DB, pizzariaID string) (int, error) {
	var maior sql.NullInt64
	if err := tx.Model(&models.Pedido{}).
		Where("pizzaria_id = ?", pizzariaID).
		Select("MAX(numero)").Scan(&maior).Error; err != nil {
		return 0, err
	}
	return int(maior.Int64) + 1, nil
}

// PedidosCozinha lista os pedidos ativos de uma pizzaria para o painel
func (ps *PedidoService) PedidosCozinha(pizzariaID string) ([]models.Pedido, error) {
	var pedidos []models.Pedido
	err := ps.db.
		Where("pizzaria_id = ? AND status IN ?", pizzariaID, models.StatusAtivos).
		Preload("Pizzaiolo").
		Preload("Motoboy").
		Order("created_at ASC").
		Find(&pedidos).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao listar pedidos da cozinha: %w", err)
	}
	return pedidos, nil
}

// BuscarPedido busca um pedido pelo ID
func (ps *PedidoService) BuscarPedido(id string) (*models.Pedido, error) {
	var pedido models.Pedido
	if err := ps.db.Preload("Pizzaiolo").Preload("Motoboy").First(&pedido, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar pedido: %w", err)
	}
	return &pedido, nil
}

// IniciarPreparo move o pedido recebido para "preparando" e grava o
// pizzaiolo como responsável. Soft lock: o primeiro UPDATE condicional
// que pegar o pedido vence; quem chegar depois recebe ErrConflito.
// Não há expiração do lock: reatribuição é sempre manual.
func (ps *PedidoService) IniciarPreparo(pedidoID, funcionarioID string) (*models.Pedido, error) {
	var funcionario models.Funcionario
	if err := ps.db.First(&funcionario, "id = ?", funcionarioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("funcionário %s: %w", funcionarioID, ErrNaoEncontrado)
		}
		return nil, fmt.Errorf("erro ao buscar funcionário: %w", err)
	}
	if funcionario.Status != models.FuncionarioAtivo {
		return nil, ErrPermissao
	}

	agora := time.Now().UTC()
	resultado := ps.db.Model(&models.Pedido{}).
		Where("id = ? AND status = ? AND pizzaiolo_id IS NULL", pedidoID, models.StatusRecebido).
		Updates(map[string]interface{}{
			"status":              models.StatusPreparando,
			"pizzaiolo_id":        funcionarioID,
			"preparo_iniciado_em": agora,
		})
	if resultado.Error != nil {
		return nil, fmt.Errorf("erro ao iniciar preparo: %w", resultado.Error)
	}

	if resultado.RowsAffected == 0 {
		// Ninguém atualizado: ou o pedido não existe, ou outro pizzaiolo
		// chegou primeiro. A releitura decide qual dos dois.
		pedido, err := ps.BuscarPedido(pedidoID)
		if err != nil {
			return nil, err
		}
		if pedido.Status == models.StatusPreparando && pedido.PizzaioloID != nil && *pedido.PizzaioloID == funcionarioID {
			// O próprio responsável reabrindo o painel: sem efeito adicional
			return pedido, nil
		}
		return nil, ErrConflito
	}

	pedido, err := ps.BuscarPedido(pedidoID)
	if err != nil {
		return nil, err
	}

	ps.cachearPedido(pedido)
	ps.publicar(models.EventoPedidoAtualizado, pedido)

	log.Printf("👨‍🍳 Pedido %s assumido pelo pizzaiolo %s", pedido.NumeroExibicao(), funcionario.Nome)
	return pedido, nil
}

// ConfirmarPizza marca uma unidade de preparo como finalizada na etapa
// atual do pedido. Idempotente: reconfirmar uma unidade já finalizada
// não tem efeito adicional. Se a confirmação completar o conjunto, a
// transição da porta correspondente dispara automaticamente.
func (ps *PedidoService) ConfirmarPizza(pedidoID, chave string) (*models.Pedido, error) {
	return ps.atualizarProgresso(pedidoID, func(progresso models.ProgressoPizzas) models.ProgressoPizzas {
		novo := make(models.ProgressoPizzas, len(progresso)+1)
		for k, v := range progresso {
			novo[k] = v
		}
		novo[chave] = true
		return novo
	})
}

// AtualizarProgresso aplica um mapa de progresso completo (PATCH do
// painel). Chaves obsoletas são podadas antes de persistir.
func (ps *PedidoService) AtualizarProgresso(pedidoID string, mapa models.ProgressoPizzas) (*models.Pedido, error) {
	return ps.atualizarProgresso(pedidoID, func(models.ProgressoPizzas) models.ProgressoPizzas {
		return mapa
	})
}

// atualizarProgresso roda a mutação do progresso em transação SERIALIZABLE:
// carrega o pedido, aplica a mudança na etapa correta, poda chaves
// obsoletas e dispara a porta automática quando o conjunto completa.
func (ps *PedidoService) atualizarProgresso(pedidoID string, aplicar func(models.ProgressoPizzas) models.ProgressoPizzas) (*models.Pedido, error) {
	var pedido models.Pedido
	var etapa string
	var avancou bool

	err := ps.executarSerializable(func(tx *gorm.DB) error {
		etapa = ""
		avancou = false

		if err := tx.First(&pedido, "id = ?", pedidoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNaoEncontrado
			}
			return err
		}

		switch pedido.Status {
		case models.StatusPreparando:
			etapa = EtapaPreparo
		case models.StatusFinalizado:
			etapa = EtapaConferencia
		default:
			return ErrTransicaoInvalida
		}

		unidades := models.UnidadesPreparo(pedido.Itens)

		var atual models.ProgressoPizzas
		if etapa == EtapaPreparo {
			atual = pedido.ProgressoPizzas
		} else {
			atual = pedido.ProgressoConferencia
		}
		if atual == nil {
			atual = models.ProgressoPizzas{}
		}

		novo := aplicar(atual).Podar(unidades)

		atualizacoes := map[string]interface{}{}

		// Porta automática: dispara quando TODAS as unidades da etapa
		// estão confirmadas. Conjunto vazio nunca dispara (pedidos sem
		// pizza seguem pelo caminho manual).
		if novo.Completo(unidades) {
			avancou = true
			agora := time.Now().UTC()
			if etapa == EtapaPreparo {
				pedido.Status = models.StatusFinalizado
				pedido.FinalizadoEm = &agora
				// Limpa o mapa ao cruzar a porta para não vazar estado
				pedido.ProgressoPizzas = models.ProgressoPizzas{}
				atualizacoes["status"] = models.StatusFinalizado
				atualizacoes["finalizado_em"] = agora
				atualizacoes["progresso_pizzas"] = models.ProgressoPizzas{}
			} else {
				pedido.Status = models.StatusPronto
				pedido.ProntoEm = &agora
				pedido.ProgressoConferencia = models.ProgressoPizzas{}
				atualizacoes["status"] = models.StatusPronto
				atualizacoes["pronto_em"] = agora
				atualizacoes["progresso_conferencia"] = models.ProgressoPizzas{}
			}
		} else {
			if etapa == EtapaPreparo {
				pedido.ProgressoPizzas = novo
				atualizacoes["progresso_pizzas"] = novo
			} else {
				pedido.ProgressoConferencia = novo
				atualizacoes["progresso_conferencia"] = novo
			}
		}

		return tx.Model(&models.Pedido{}).Where("id = ?", pedidoID).Updates(atualizacoes).Error
	})
	if err != nil {
		if errors.Is(err, ErrNaoEncontrado) || errors.Is(err, ErrTransicaoInvalida) {
			return nil, err
		}
		return nil, fmt.Errorf("erro ao atualizar progresso: %w", err)
	}

	ps.cachearPedido(&pedido)

	if avancou {
		ps.publicar(models.EventoPedidoAtualizado, &pedido)
		log.Printf("✅ Pedido %s avançou para %s (todas as pizzas confirmadas na etapa %s)",
			pedido.NumeroExibicao(), pedido.Status, etapa)
	} else {
		progresso := pedido.ProgressoPizzas
		if etapa == EtapaConferencia {
			progresso = pedido.ProgressoConferencia
		}
		ps.publicarProgresso(&pedido, etapa, progresso)
	}

	return &pedido, nil
}

// AtualizarStatus aplica uma transição manual validada pela máquina de
// estados. As pré-condições de progresso NÃO são exigidas aqui: este é o
// caminho manual, usado p.ex. por pedidos sem pizza que não passam pelas
// portas automáticas.
func (ps *PedidoService) AtualizarStatus(pedidoID string, novo models.StatusPedido) (*models.Pedido, error) {
	var pedido models.Pedido

	err := ps.executarSerializable(func(tx *gorm.DB) error {
		if err := tx.First(&pedido, "id = ?", pedidoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNaoEncontrado
			}
			return err
		}

		if !pedido.CanTransitionTo(novo) {
			return ErrTransicaoInvalida
		}

		atualizacoes := map[string]interface{}{"status": novo}
		agora := time.Now().UTC()

		switch novo {
		case models.StatusPreparando:
			atualizacoes["preparo_iniciado_em"] = agora
			pedido.PreparoIniciadoEm = &agora
		case models.StatusFinalizado:
			atualizacoes["finalizado_em"] = agora
			atualizacoes["progresso_pizzas"] = models.ProgressoPizzas{}
			pedido.FinalizadoEm = &agora
			pedido.ProgressoPizzas = models.ProgressoPizzas{}
		case models.StatusPronto:
			atualizacoes["pronto_em"] = agora
			atualizacoes["progresso_conferencia"] = models.ProgressoPizzas{}
			pedido.ProntoEm = &agora
			pedido.ProgressoConferencia = models.ProgressoPizzas{}
		case models.StatusSaiuEntrega:
			atualizacoes["saiu_entrega_em"] = agora
			pedido.SaiuEntregaEm = &agora
		case models.StatusEntregue:
			atualizacoes["entregue_em"] = agora
			pedido.EntregueEm = &agora
		case models.StatusFinalizadoPago:
			atualizacoes["pago_em"] = agora
			pedido.PagoEm = &agora
		case models.StatusCancelado:
			atualizacoes["cancelado_em"] = agora
			pedido.CanceladoEm = &agora
		}

		pedido.Status = novo
		return tx.Model(&models.Pedido{}).Where("id = ?", pedidoID).Updates(atualizacoes).Error
	})
	if err != nil {
		if errors.Is(err, ErrNaoEncontrado) || errors.Is(err, ErrTransicaoInvalida) {
			return nil, err
		}
		return nil, fmt.Errorf("erro ao atualizar status: %w", err)
	}

	ps.cachearPedido(&pedido)
	if pedido.Terminal() {
		ps.removerDosAtivos(&pedido)
	}

	if novo == models.StatusCancelado {
		ps.publicar(models.EventoPedidoCancelado, &pedido)
	} else {
		ps.publicar(models.EventoPedidoAtualizado, &pedido)
	}

	log.Printf("📋 Pedido %s: status -> %s", pedido.NumeroExibicao(), novo)
	return &pedido, nil
}

// AtribuirMotoboy vincula um entregador ao pedido pronto e o despacha
// (pronto -> saiu_entrega). Válido apenas para pedidos delivery.
func (ps *PedidoService) AtribuirMotoboy(pedidoID, motoboyID string) (*models.Pedido, error) {
	pedido, err := ps.BuscarPedido(pedidoID)
	if err != nil {
		return nil, err
	}

	if pedido.Status != models.StatusPronto || pedido.Tipo != models.TipoDelivery {
		return nil, ErrTransicaoInvalida
	}

	var motoboy models.Funcionario
	if err := ps.db.First(&motoboy, "id = ?", motoboyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("motoboy %s: %w", motoboyID, ErrNaoEncontrado)
		}
		return nil, fmt.Errorf("erro ao buscar motoboy: %w", err)
	}
	if motoboy.Cargo != models.CargoMotoboy || motoboy.Status != models.FuncionarioAtivo {
		return nil, fmt.Errorf("funcionário %s não é um motoboy ativo", motoboy.Nome)
	}
	if motoboy.PizzariaID != pedido.PizzariaID {
		return nil, ErrPermissao
	}

	agora := time.Now().UTC()
	resultado := ps.db.Model(&models.Pedido{}).
		Where("id = ? AND status = ?", pedidoID, models.StatusPronto).
		Updates(map[string]interface{}{
			"status":          models.StatusSaiuEntrega,
			"motoboy_id":      motoboyID,
			"saiu_entrega_em": agora,
		})
	if resultado.Error != nil {
		return nil, fmt.Errorf("erro ao despachar pedido: %w", resultado.Error)
	}
	if resultado.RowsAffected == 0 {
		// Outro atendente despachou no meio do caminho
		return nil, ErrConflito
	}

	pedido, err = ps.BuscarPedido(pedidoID)
	if err != nil {
		return nil, err
	}

	ps.cachearPedido(pedido)
	ps.publicar(models.EventoPedidoAtualizado, pedido)

	log.Printf("🛵 Pedido %s saiu para entrega com %s", pedido.NumeroExibicao(), motoboy.Nome)
	return pedido, nil
}

// LiberarRetirada conclui um pedido de retirada pronto (pronto -> entregue),
// sem motoboy
func (ps *PedidoService) LiberarRetirada(pedidoID string) (*models.Pedido, error) {
	pedido, err := ps.BuscarPedido(pedidoID)
	if err != nil {
		return nil, err
	}
	if pedido.Status != models.StatusPronto || pedido.Tipo != models.TipoRetirada {
		return nil, ErrTransicaoInvalida
	}
	return ps.AtualizarStatus(pedidoID, models.StatusEntregue)
}

// ConfirmarPagamento fecha o pedido entregue (entregue -> finalizado_pago)
func (ps *PedidoService) ConfirmarPagamento(pedidoID string) (*models.Pedido, error) {
	return ps.AtualizarStatus(pedidoID, models.StatusFinalizadoPago)
}

// CancelarPedido cancela um pedido ainda não pronto
func (ps *PedidoService) CancelarPedido(pedidoID string) (*models.Pedido, error) {
	return ps.AtualizarStatus(pedidoID, models.StatusCancelado)
}

// Motoboys lista os entregadores ativos de uma pizzaria (para o despacho)
func (ps *PedidoService) Motoboys(pizzariaID string) ([]models.Funcionario, error) {
	var motoboys []models.Funcionario
	err := ps.db.
		Where("pizzaria_id = ? AND cargo = ? AND status = ?", pizzariaID, models.CargoMotoboy, models.FuncionarioAtivo).
		Order("nome ASC").
		Find(&motoboys).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao listar motoboys: %w", err)
	}
	return motoboys, nil
}

// BootstrapState restaura o estado dos pedidos ativos do PostgreSQL para
// o Redis. Executado no boot ANTES de ligar o consumidor Kafka, para que
// o painel enxergue os pedidos em andamento após um restart.
func (ps *PedidoService) BootstrapState() error {
	if ps.db == nil {
		return fmt.Errorf("banco de dados indisponível")
	}
	if ps.redisUtil == nil {
		return fmt.Errorf("Redis indisponível")
	}

	inicio := time.Now()
	log.Printf("🔄 BootstrapState: restaurando pedidos ativos do PostgreSQL...")

	var pedidos []models.Pedido
	err := ps.db.
		Where("status IN ?", models.StatusAtivos).
		Order("created_at DESC").
		Limit(10000).
		Find(&pedidos).Error
	if err != nil {
		return fmt.Errorf("erro ao consultar pedidos ativos: %w", err)
	}

	restaurados := 0
	for i := range pedidos {
		ps.cachearPedido(&pedidos[i])
		restaurados++
	}

	log.Printf("✅ BootstrapState: %d pedidos restaurados em %v", restaurados, time.Since(inicio))
	return nil
}

// ArquivarPedidosAntigos move pedidos terminais com mais de 1 ano para
// o status "arquivado". Chamado por worker em background uma vez ao dia.
func (ps *PedidoService) ArquivarPedidosAntigos() error {
	if ps.db == nil {
		return fmt.Errorf("banco de dados indisponível")
	}

	corte := time.Now().AddDate(-1, 0, 0)
	resultado := ps.db.Model(&models.Pedido{}).
		Where("status IN ? AND created_at < ?", []models.StatusPedido{models.StatusFinalizadoPago, models.StatusCancelado}, corte).
		Update("status", models.StatusArquivado)
	if resultado.Error != nil {
		return fmt.Errorf("erro ao arquivar pedidos: %w", resultado.Error)
	}

	log.Printf("🗄️ ArquivarPedidosAntigos: %d pedidos arquivados", resultado.RowsAffected)
	return nil
}

// executarSerializable roda fn em transação SERIALIZABLE com retry
// exponencial para falhas de serialização (disputa entre dois painéis
// mexendo no mesmo pedido)
func (ps *PedidoService) executarSerializable(fn func(tx *gorm.DB) error) error {
	const maxTentativas = 5
	baseDelay := 10 * time.Millisecond

	for tentativa := 0; tentativa < maxTentativas; tentativa++ {
		err := ps.db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil {
			if tentativa > 0 {
				log.Printf("✅ Transação concluída após %d tentativas", tentativa+1)
			}
			return nil
		}

		if !isSerializationFailure(err) {
			return err
		}

		if tentativa < maxTentativas-1 {
			delay := baseDelay*time.Duration(1<<uint(tentativa)) + time.Duration(rand.Intn(10))*time.Millisecond
			log.Printf("⚠️ Falha de serialização (tentativa %d/%d), retry em %v", tentativa+1, maxTentativas, delay)
			time.Sleep(delay)
			continue
		}
		return fmt.Errorf("falha de serialização após %d tentativas: %w", maxTentativas, err)
	}

	return fmt.Errorf("código inalcançável")
}

// isSerializationFailure verifica se o erro é uma falha de serialização
// do PostgreSQL (40001) ou deadlock (40P01)
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "serialization") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize")
}

// cachearPedido espelha o pedido no Redis e o mantém no conjunto de
// ativos da pizzaria
func (ps *PedidoService) cachearPedido(pedido *models.Pedido) {
	if ps.redisUtil == nil {
		return
	}

	chave := fmt.Sprintf("pizzaria:%s:pedido:%s", pedido.PizzariaID, pedido.ID)
	if err := ps.redisUtil.Set(chave, pedido, 24*time.Hour); err != nil {
		log.Printf("⚠️ Erro ao cachear pedido %s no Redis: %v", pedido.ID, err)
		return
	}

	ativos := fmt.Sprintf("pizzaria:%s:pedidos:ativos", pedido.PizzariaID)
	if pedido.Terminal() {
		ps.redisUtil.SRem(ativos, pedido.ID)
	} else {
		ps.redisUtil.SAdd(ativos, pedido.ID)
	}
}

// removerDosAtivos tira o pedido do conjunto de ativos da pizzaria
func (ps *PedidoService) removerDosAtivos(pedido *models.Pedido) {
	if ps.redisUtil == nil {
		return
	}
	ps.redisUtil.SRem(fmt.Sprintf("pizzaria:%s:pedidos:ativos", pedido.PizzariaID), pedido.ID)
	ps.redisUtil.Delete(fmt.Sprintf("pizzaria:%s:pedido:%s", pedido.PizzariaID, pedido.ID))
}

// publicar envia um evento de pedido para o tópico
func (ps *PedidoService) publicar(evento string, pedido *models.Pedido) {
	if ps.publisher == nil {
		return
	}
	ps.publisher.Publicar(evento, pedido.PizzariaID, models.DadosPedido{
		PedidoID: pedido.ID,
		Numero:   pedido.NumeroExibicao(),
		Status:   pedido.Status,
	})
}

// publicarProgresso envia o evento de progresso (aplicado direto no
// estado local dos painéis, sem recarga completa)
func (ps *PedidoService) publicarProgresso(pedido *models.Pedido, etapa string, progresso models.ProgressoPizzas) {
	if ps.publisher == nil {
		return
	}
	ps.publisher.Publicar(models.EventoProgressoPizzas, pedido.PizzariaID, models.DadosProgresso{
		PedidoID:        pedido.ID,
		Etapa:           etapa,
		ProgressoPizzas: progresso,
	})
}
