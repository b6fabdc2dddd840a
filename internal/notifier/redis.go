package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const publishTimeout = 2 * time.Second

// RedisPublisher публикует события изменения расписания в Redis pub/sub.
// Зрители (веб-клиенты через WebSocket-шлюз) подписываются на канал своей
// агенды и перечитывают расписание при получении события.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher создает публикатор поверх Redis
func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping проверяет доступность Redis при старте сервиса
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish отправляет событие в канал агенды. Ошибка публикации не влияет
// на результат бронирования — вызывающий только логирует её.
func (p *RedisPublisher) Publish(event Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notifier: failed to marshal event: %w", err)
	}

	channel := ChannelFor(event.AgendaID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("notifier: failed to publish to %s: %w", channel, err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// ChannelFor возвращает имя pub/sub-канала агенды
func ChannelFor(agendaID int64) string {
	return fmt.Sprintf("agenda:%d:changes", agendaID)
}
