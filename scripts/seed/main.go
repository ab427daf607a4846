// Seed de dados de teste: cria uma pizzaria com equipe, cardápio e
// alguns pedidos de exemplo para desenvolvimento local.
//
// Uso: go run ./scripts/seed
package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"pizzaria/server/internal/config"
	"pizzaria/server/internal/database"
	"pizzaria/server/internal/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Arquivo .env não encontrado, usando variáveis do sistema")
	}

	cfg := config.Load()

	safeURL := cfg.DatabaseURL
	if idx := strings.Index(safeURL, "@"); idx > 0 {
		if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
			safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
		}
	}
	log.Printf("📋 Usando DATABASE_URL: %s", safeURL)

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Erro ao conectar no banco: %v", err)
	}
	defer database.ClosePostgres(db)

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Erro nas migrações: %v", err)
	}

	if err := seed(db); err != nil {
		log.Fatalf("❌ Seed falhou: %v", err)
	}
	log.Println("✅ Seed concluído")
	os.Exit(0)
}

func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Pizzaria de teste (reaproveita se já existe)
		var pizzaria models.Pizzaria
		err := tx.Where("nome = ?", "Pizzaria Bella Massa").First(&pizzaria).Error
		if err == gorm.ErrRecordNotFound {
			pizzaria = models.Pizzaria{
				Nome:     "Pizzaria Bella Massa",
				Endereco: "Rua das Acácias, 120 - Centro",
				Telefone: "+5511987650001",
			}
			if err := tx.Create(&pizzaria).Error; err != nil {
				return err
			}
			log.Printf("🏪 Pizzaria criada: %s (%s)", pizzaria.Nome, pizzaria.ID)
		} else if err != nil {
			return err
		} else {
			log.Printf("🏪 Pizzaria já existe: %s", pizzaria.Nome)
		}

		// Equipe: pizzaiolos, atendente e motoboys
		equipe := []models.Funcionario{
			{Nome: "Rafael Souza", Telefone: "+5511987650002", Cargo: models.CargoPizzaiolo},
			{Nome: "Juliana Prado", Telefone: "+5511987650003", Cargo: models.CargoPizzaiolo},
			{Nome: "Camila Reis", Telefone: "+5511987650004", Cargo: models.CargoAtendente},
			{Nome: "Diego Martins", Telefone: "+5511987650005", Cargo: models.CargoMotoboy},
			{Nome: "Bruno Lima", Telefone: "+5511987650006", Cargo: models.CargoMotoboy},
		}
		for _, funcionario := range equipe {
			funcionario.PizzariaID = pizzaria.ID
			funcionario.Status = models.FuncionarioAtivo
			err := tx.Where("telefone = ?", funcionario.Telefone).
				FirstOrCreate(&funcionario, models.Funcionario{Telefone: funcionario.Telefone}).Error
			if err != nil {
				return err
			}
		}
		log.Printf("👥 Equipe criada: %d funcionários", len(equipe))

		// Cardápio básico
		cardapio := []models.ItemCardapio{
			{Nome: "Margherita", Categoria: models.CategoriaPizza, Preco: 4500, Descricao: "Molho, muçarela e manjericão"},
			{Nome: "Calabresa", Categoria: models.CategoriaPizza, Preco: 4800, Descricao: "Calabresa fatiada e cebola"},
			{Nome: "Quatro Queijos", Categoria: models.CategoriaPizza, Preco: 5200, Descricao: "Muçarela, provolone, gorgonzola e catupiry"},
			{Nome: "Guaraná 2L", Categoria: models.CategoriaBebida, Preco: 1200},
			{Nome: "Borda de Catupiry", Categoria: models.CategoriaBorda, Preco: 800},
			{Nome: "Combo Família", Categoria: models.CategoriaCombo, Preco: 9900, Descricao: "2 pizzas grandes + refrigerante 2L"},
		}
		for _, item := range cardapio {
			item.PizzariaID = pizzaria.ID
			item.Ativo = true
			err := tx.Where("pizzaria_id = ? AND nome = ?", pizzaria.ID, item.Nome).
				FirstOrCreate(&item, models.ItemCardapio{PizzariaID: pizzaria.ID, Nome: item.Nome}).Error
			if err != nil {
				return err
			}
		}
		log.Printf("📋 Cardápio criado: %d itens", len(cardapio))

		// Pedidos de exemplo em status diferentes, para o painel ter o
		// que mostrar de cara
		pedidos := []models.Pedido{
			{
				PizzariaID: pizzaria.ID, Numero: 1, Status: models.StatusRecebido, Tipo: models.TipoDelivery,
				NomeCliente: "Ana Beatriz", TelefoneCliente: "+5511912340001",
				EnderecoEntrega: "Av. Paulista, 1000 - apto 52",
				Itens: models.ItensPedido{
					{Nome: "Margherita", Categoria: models.CategoriaPizza, Quantidade: 1, PrecoUnitario: 4500, Sabores: []string{"margherita"}},
					{Nome: "Guaraná 2L", Categoria: models.CategoriaBebida, Quantidade: 1, PrecoUnitario: 1200},
				},
				Subtotal: 5700, TaxaEntrega: 800, Total: 6500,
			},
			{
				PizzariaID: pizzaria.ID, Numero: 2, Status: models.StatusRecebido, Tipo: models.TipoRetirada,
				NomeCliente: "Carlos Eduardo", TelefoneCliente: "+5511912340002",
				Itens: models.ItensPedido{
					{
						Nome: "Combo Família", Categoria: models.CategoriaCombo, Quantidade: 1, PrecoUnitario: 9900,
						Componentes: []models.ComponenteCombo{
							{Nome: "Pizza Grande", Categoria: models.CategoriaPizza, Quantidade: 2},
							{Nome: "Guaraná 2L", Categoria: models.CategoriaBebida, Quantidade: 1},
						},
						PizzasCombo: []models.PizzaCombo{
							{Sabores: []string{"calabresa"}},
							{Sabores: []string{"quatro queijos"}, Borda: "catupiry"},
						},
					},
				},
				Subtotal: 9900, Total: 9900,
			},
		}
		for _, pedido := range pedidos {
			err := tx.Where("pizzaria_id = ? AND numero = ?", pizzaria.ID, pedido.Numero).
				FirstOrCreate(&pedido, models.Pedido{PizzariaID: pizzaria.ID, Numero: pedido.Numero}).Error
			if err != nil {
				return err
			}
		}
		log.Printf("🍕 Pedidos de exemplo criados: %d", len(pedidos))

		return nil
	})
}
