package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CategoriaItem identifica a variante de um item do pedido
type CategoriaItem string

const (
	CategoriaPizza  CategoriaItem = "pizza"
	CategoriaBebida CategoriaItem = "bebida"
	CategoriaBorda  CategoriaItem = "borda"
	CategoriaCombo  CategoriaItem = "combo"
	CategoriaSabor  CategoriaItem = "sabor"
)

// ItemPedido é um item da comanda. A categoria define quais campos fazem
// sentido: apenas combos carregam Componentes/PizzasCombo, e apenas itens
// de categoria pizza (diretos ou dentro de combo) entram no progresso da
// cozinha: bebidas, bordas e sabores avulsos são inertes para o preparo.
type ItemPedido struct {
	ItemCardapioID string        `json:"item_cardapio_id,omitempty"`
	Nome           string        `json:"nome"`
	Categoria      CategoriaItem `json:"categoria"`
	Quantidade     int           `json:"quantidade"`
	PrecoUnitario  int           `json:"preco_unitario"` // Em centavos

	// Campos de pizza direta
	Sabores     []string `json:"sabores,omitempty"`
	Borda       string   `json:"borda,omitempty"`
	Observacoes string   `json:"observacoes,omitempty"`

	// Campos de combo
	Componentes []ComponenteCombo `json:"componentes,omitempty"`
	PizzasCombo []PizzaCombo      `json:"pizzas_combo,omitempty"`
}

// ComponenteCombo é um item que compõe um combo (pizza, bebida, etc.)
type ComponenteCombo struct {
	Nome       string        `json:"nome"`
	Categoria  CategoriaItem `json:"categoria"`
	Quantidade int           `json:"quantidade"`
}

// PizzaCombo detalha uma pizza escolhida dentro de um combo
type PizzaCombo struct {
	Sabores     []string `json:"sabores"`
	Borda       string   `json:"borda,omitempty"`
	Observacoes string   `json:"observacoes,omitempty"`
}

// ItensPedido é a lista de itens persistida como JSONB
type ItensPedido []ItemPedido

// Value implementa driver.Valuer para o gorm
func (itens ItensPedido) Value() (driver.Value, error) {
	if itens == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(itens)
}

// Scan implementa sql.Scanner para o gorm
func (itens *ItensPedido) Scan(value interface{}) error {
	if value == nil {
		*itens = ItensPedido{}
		return nil
	}
	var dados []byte
	switch v := value.(type) {
	case []byte:
		dados = v
	case string:
		dados = []byte(v)
	default:
		return fmt.Errorf("tipo inesperado para ItensPedido: %T", value)
	}
	if len(dados) == 0 {
		*itens = ItensPedido{}
		return nil
	}
	return json.Unmarshal(dados, itens)
}

// UnidadePreparo é uma pizza individualmente confirmável na cozinha,
// direta ou aninhada em um combo
type UnidadePreparo struct {
	Chave       string   `json:"chave"`
	Sabores     []string `json:"sabores"`
	Borda       string   `json:"borda,omitempty"`
	Observacoes string   `json:"observacoes,omitempty"`
	ItemIndex   int      `json:"item_index"`
	SubIndex    int      `json:"sub_index"` // -1 para pizza direta
}

// UnidadesPreparo achata os itens do pedido na lista ordenada de unidades
// de preparo. As chaves são determinísticas e estáveis entre recargas:
//
//	pizza direta no índice i            -> "direct-{i}"
//	pizza j dentro do combo no índice i -> "combo-{i}-{j}"
//
// Nenhuma outra chave é produzida. O conjunto válido de chaves é sempre
// recalculado a partir dos itens atuais.
func UnidadesPreparo(itens ItensPedido) []UnidadePreparo {
	var unidades []UnidadePreparo
	for i, item := range itens {
		switch item.Categoria {
		case CategoriaPizza:
			unidades = append(unidades, UnidadePreparo{
				Chave:       fmt.Sprintf("direct-%d", i),
				Sabores:     item.Sabores,
				Borda:       item.Borda,
				Observacoes: item.Observacoes,
				ItemIndex:   i,
				SubIndex:    -1,
			})
		case CategoriaCombo:
			for j, pizza := range item.PizzasCombo {
				unidades = append(unidades, UnidadePreparo{
					Chave:       fmt.Sprintf("combo-%d-%d", i, j),
					Sabores:     pizza.Sabores,
					Borda:       pizza.Borda,
					Observacoes: pizza.Observacoes,
					ItemIndex:   i,
					SubIndex:    j,
				})
			}
		}
	}
	return unidades
}
