package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Errores de publicación.
var (
	ErrProducerClosed = errors.New("kafka: productor cerrado")
	ErrBufferFull     = errors.New("kafka: buffer de publicación lleno")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer encola mensajes y los escribe desde una goroutine propia, para que el request
// HTTP no espere al broker. Close vacía la cola antes de cerrar el writer.
type Producer struct {
	w     messageWriter
	topic string
	log   zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	inbox   chan kafka.Message
	done    chan struct{}
	started sync.Once
}

// NewProducer crea un productor para un tópico. buf es el tamaño de la cola en memoria.
func NewProducer(brokers []string, topic string, buf int, log zerolog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, topic, buf, log)
}

func newProducer(w messageWriter, topic string, buf int, log zerolog.Logger) *Producer {
	if buf <= 0 {
		buf = 256
	}
	return &Producer{
		w:     w,
		topic: topic,
		log:   log.With().Str("component", "kafka_producer").Str("topic", topic).Logger(),
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start lanza el loop de escritura. Llamadas repetidas no tienen efecto.
func (p *Producer) Start() {
	p.started.Do(func() {
		go func() {
			defer close(p.done)
			for m := range p.inbox {
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					p.log.Error().Err(err).Str("key", string(m.Key)).Msg("no se pudo escribir el mensaje")
				}
			}
			if err := p.w.Close(); err != nil {
				p.log.Warn().Err(err).Msg("cerrar writer")
			}
		}()
	})
}

// Publish encola el mensaje sin bloquear.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close deja de aceptar mensajes, vacía la cola y espera al loop (o a ctx).
func (p *Producer) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	p.Start() // si nunca arrancó, drena igual
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
