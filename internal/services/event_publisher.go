package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"pizzaria/server/internal/models"
)

// PublicadorEventos envia eventos de pedido para o tópico Kafka.
// O consumidor (kafka_ws_consumer) repassa cada evento para a sala
// WebSocket da pizzaria correspondente.
type PublicadorEventos interface {
	Publicar(evento string, pizzariaID string, dados interface{})
	Close() error
}

// KafkaPublisher é a implementação padrão sobre kafka-go
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher cria o publisher. A chave da mensagem é o id da
// pizzaria: eventos da mesma pizzaria caem na mesma partição e chegam
// em ordem no consumidor.
func NewKafkaPublisher(brokers []string, topic string, dialer *kafka.Dialer) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Dialer:       dialer,
	})
	return &KafkaPublisher{writer: writer}
}

// Publicar envia um evento. Falha de publicação é apenas logada: o
// painel se recupera pelo polling de segurança, então não propagamos
// o erro para a operação que gerou o evento.
func (kp *KafkaPublisher) Publicar(evento string, pizzariaID string, dados interface{}) {
	var payload json.RawMessage
	if dados != nil {
		b, err := json.Marshal(dados)
		if err != nil {
			log.Printf("⚠️ Erro ao serializar dados do evento %s: %v", evento, err)
			return
		}
		payload = b
	}

	env := models.EventoPedido{
		Evento:     evento,
		PizzariaID: pizzariaID,
		Dados:      payload,
		Timestamp:  time.Now().Unix(),
	}

	msg, err := json.Marshal(env)
	if err != nil {
		log.Printf("⚠️ Erro ao serializar evento %s: %v", evento, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := kp.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(pizzariaID),
		Value: msg,
	}); err != nil {
		log.Printf("⚠️ Erro ao publicar evento %s no Kafka: %v", evento, err)
	}
}

// Close encerra o writer
func (kp *KafkaPublisher) Close() error {
	return kp.writer.Close()
}
