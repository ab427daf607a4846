package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"pizzaria/server/internal/models"
	"pizzaria/server/internal/utils"
)

// KafkaWSConsumer lê os eventos de pedido do Kafka e repassa para as
// salas WebSocket das pizzarias
type KafkaWSConsumer struct {
	topic     string
	groupID   string
	reader    *kafka.Reader
	ctx       context.Context
	cancel    context.CancelFunc
	hub       *Hub
	redisUtil *utils.RedisClient
	processed int64
	lastLog   int64
}

// NewKafkaWSConsumer cria o consumer de eventos para os painéis
func NewKafkaWSConsumer(brokers string, topic string, hub *Hub, redisUtil *utils.RedisClient, username, password, caCert string) *KafkaWSConsumer {
	brokerList := ParseKafkaBrokers(brokers)
	ctx, cancel := context.WithCancel(context.Background())

	dialer := CreateKafkaDialer(username, password, caCert)

	groupID := "painel-cozinha-ws"
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokerList,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset, // O BootstrapState já restaurou o histórico; aqui só interessam eventos novos
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
	})

	return &KafkaWSConsumer{
		topic:     topic,
		groupID:   groupID,
		reader:    reader,
		ctx:       ctx,
		cancel:    cancel,
		hub:       hub,
		redisUtil: redisUtil,
		lastLog:   time.Now().Unix(),
	}
}

// Start liga a leitura do tópico e o fan-out para as salas
func (kc *KafkaWSConsumer) Start() {
	log.Printf("📡 Kafka WS Consumer ativo: topic=%s, groupID=%s", kc.topic, kc.groupID)

	go func() {
		for {
			select {
			case <-kc.ctx.Done():
				log.Println("🛑 Kafka WS Consumer parado")
				return
			default:
				msg, err := kc.reader.ReadMessage(kc.ctx)
				if err != nil {
					if err == context.Canceled {
						return
					}
					log.Printf("⚠️ Erro de leitura no Kafka WS Consumer: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}

				var evento models.EventoPedido
				if err := json.Unmarshal(msg.Value, &evento); err != nil {
					// Mensagem fora do formato: descarta sem poluir o log
					continue
				}
				if evento.PizzariaID == "" {
					continue
				}

				// Guarda o último evento da pizzaria no Redis para debug
				// e para o endpoint de reconciliação conferir o relógio
				if kc.redisUtil != nil {
					chave := fmt.Sprintf("pizzaria:%s:ultimo_evento", evento.PizzariaID)
					if err := kc.redisUtil.Set(chave, evento, 24*time.Hour); err != nil {
						log.Printf("⚠️ Erro ao gravar último evento da pizzaria %s: %v", evento.PizzariaID, err)
					}
					kc.redisUtil.Increment(fmt.Sprintf("pizzaria:%s:eventos:total", evento.PizzariaID))
				}

				// Fan-out apenas para a sala da pizzaria do evento
				kc.hub.BroadcastSala(evento.PizzariaID, msg.Value)

				processed := atomic.AddInt64(&kc.processed, 1)
				now := time.Now().Unix()
				if now-atomic.LoadInt64(&kc.lastLog) >= 5 {
					atomic.StoreInt64(&kc.lastLog, now)
					log.Printf("📊 Kafka WS Consumer: %d eventos repassados", processed)
				}
			}
		}
	}()
}

// Stop encerra o consumer
func (kc *KafkaWSConsumer) Stop() {
	kc.cancel()
	if kc.reader != nil {
		kc.reader.Close()
	}
	log.Println("🛑 Kafka WS Consumer parado")
}
