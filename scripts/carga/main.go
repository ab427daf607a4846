// Gerador de carga: dispara pedidos contra POST /api/v1/pedidos para
// medir a vazão do servidor e do pipeline Kafka/WebSocket.
//
// Uso: go run ./scripts/carga -url http://localhost:8080 -pizzaria <uuid>
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	totalRequests   int64
	successRequests int64
	failedRequests  int64
	totalLatencyUs  int64
)

type pedidoCarga struct {
	PizzariaID      string      `json:"pizzaria_id"`
	Tipo            string      `json:"tipo"`
	NomeCliente     string      `json:"nome_cliente"`
	TelefoneCliente string      `json:"telefone_cliente"`
	EnderecoEntrega string      `json:"endereco_entrega"`
	Itens           []itemCarga `json:"itens"`
	TaxaEntrega     int         `json:"taxa_entrega"`
}

type itemCarga struct {
	Nome          string   `json:"nome"`
	Categoria     string   `json:"categoria"`
	Quantidade    int      `json:"quantidade"`
	PrecoUnitario int      `json:"preco_unitario"`
	Sabores       []string `json:"sabores,omitempty"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "URL base do servidor")
	pizzariaID := flag.String("pizzaria", "", "ID da pizzaria alvo (obrigatório)")
	concurrency := flag.Int("c", 50, "Goroutines simultâneas")
	duracao := flag.Duration("d", 10*time.Second, "Duração do teste")
	flag.Parse()

	if *pizzariaID == "" {
		log.Fatal("❌ Informe -pizzaria com o ID da pizzaria alvo (rode o seed antes)")
	}

	url := *baseURL + "/api/v1/pedidos"
	fmt.Printf("🚀 Carga de pedidos\n")
	fmt.Printf("📍 URL: %s\n", url)
	fmt.Printf("👥 Goroutines: %d\n", *concurrency)
	fmt.Printf("⏱️  Duração: %s\n", *duracao)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	corpo, err := json.Marshal(pedidoCarga{
		PizzariaID:      *pizzariaID,
		Tipo:            "delivery",
		NomeCliente:     "Cliente Carga",
		TelefoneCliente: "+5511900000000",
		EnderecoEntrega: "Rua da Carga, 1",
		Itens: []itemCarga{
			{Nome: "Calabresa", Categoria: "pizza", Quantidade: 1, PrecoUnitario: 4800, Sabores: []string{"calabresa"}},
		},
		TaxaEntrega: 800,
	})
	if err != nil {
		log.Fatalf("❌ Erro montando JSON: %v", err)
	}

	cliente := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *concurrency * 2,
			MaxIdleConnsPerHost: *concurrency * 2,
		},
	}

	parar := make(chan struct{})
	var wg sync.WaitGroup

	inicio := time.Now()
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go worker(cliente, url, corpo, parar, &wg)
	}

	// Estatísticas parciais a cada segundo
	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			total := atomic.LoadInt64(&totalRequests)
			ok := atomic.LoadInt64(&successRequests)
			decorrido := time.Since(inicio).Seconds()
			fmt.Printf("⏱️  %5.1fs | total: %6d | ok: %6d | rps: %7.1f\n",
				decorrido, total, ok, float64(total)/decorrido)
		}
	}()

	time.Sleep(*duracao)
	close(parar)
	wg.Wait()
	ticker.Stop()

	imprimirRelatorio(time.Since(inicio))
}

func worker(cliente *http.Client, url string, corpo []byte, parar <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-parar:
			return
		default:
		}

		comeco := time.Now()
		resp, err := cliente.Post(url, "application/json", bytes.NewReader(corpo))
		atomic.AddInt64(&totalRequests, 1)
		atomic.AddInt64(&totalLatencyUs, time.Since(comeco).Microseconds())

		if err != nil {
			atomic.AddInt64(&failedRequests, 1)
			continue
		}
		if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
			atomic.AddInt64(&successRequests, 1)
		} else {
			atomic.AddInt64(&failedRequests, 1)
		}
		resp.Body.Close()
	}
}

func imprimirRelatorio(decorrido time.Duration) {
	total := atomic.LoadInt64(&totalRequests)
	ok := atomic.LoadInt64(&successRequests)
	falhas := atomic.LoadInt64(&failedRequests)

	var latenciaMedia float64
	if total > 0 {
		latenciaMedia = float64(atomic.LoadInt64(&totalLatencyUs)) / float64(total) / 1000
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📊 Resultado final\n")
	fmt.Printf("   Total de pedidos:  %d\n", total)
	fmt.Printf("   Sucesso:           %d (%.1f%%)\n", ok, porcentagem(ok, total))
	fmt.Printf("   Falhas:            %d\n", falhas)
	fmt.Printf("   RPS médio:         %.1f\n", float64(total)/decorrido.Seconds())
	fmt.Printf("   Latência média:    %.2fms\n", latenciaMedia)
	fmt.Printf("   Memória do client: %.2f MB (GCs: %d)\n", float64(m.Alloc)/1024/1024, m.NumGC)
}

func porcentagem(parte, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(parte) / float64(total) * 100
}
