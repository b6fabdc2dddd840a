package notifier

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind вид изменения расписания агенды
type EventKind string

const (
	EventAppointmentCreated     EventKind = "appointment_created"
	EventAppointmentCancelled   EventKind = "appointment_cancelled"
	EventAppointmentRescheduled EventKind = "appointment_rescheduled"
	EventExceptionChanged       EventKind = "exception_changed"
)

// Event факт изменения расписания агенды. Это подсказка для инвалидации
// кэша у зрителей, а не источник истины: доставка best-effort, корректность
// бронирования от неё не зависит.
type Event struct {
	ID         string    `json:"id"`
	AgendaID   int64     `json:"agendaId"`
	Kind       EventKind `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Subscriber колбэк подписчика; вызывается из горутины-диспетчера
type Subscriber func(Event)

// Publisher внешний транспорт фан-аута (например, Redis pub/sub)
type Publisher interface {
	Publish(event Event) error
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

const eventBufferSize = 256

// Notifier рассылает события изменения расписания внутренним подписчикам
// и, опционально, во внешний Publisher. Publish никогда не блокирует
// вызывающего: события кладутся в буферизованный канал, при переполнении
// отбрасываются с записью в лог.
type Notifier struct {
	mu        sync.RWMutex
	subs      map[int64][]subscription
	nextSubID int64

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	publisher Publisher
	logger    Logger
}

type subscription struct {
	id int64
	fn Subscriber
}

// New создает Notifier и запускает горутину-диспетчер.
// publisher может быть nil, если внешний фан-аут не настроен.
func New(logger Logger, publisher Publisher) *Notifier {
	n := &Notifier{
		subs:      make(map[int64][]subscription),
		events:    make(chan Event, eventBufferSize),
		done:      make(chan struct{}),
		publisher: publisher,
		logger:    logger,
	}
	go n.dispatch()
	return n
}

// Subscribe регистрирует колбэк на изменения агенды.
// Возвращает функцию отписки.
func (n *Notifier) Subscribe(agendaID int64, fn Subscriber) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextSubID++
	id := n.nextSubID
	n.subs[agendaID] = append(n.subs[agendaID], subscription{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		subs := n.subs[agendaID]
		for i, s := range subs {
			if s.id == id {
				n.subs[agendaID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish ставит событие в очередь рассылки. Вызывается только после
// коммита транзакции — блокировки бронирования в этот момент уже отпущены.
func (n *Notifier) Publish(agendaID int64, kind EventKind) {
	event := Event{
		ID:         uuid.NewString(),
		AgendaID:   agendaID,
		Kind:       kind,
		OccurredAt: time.Now(),
	}

	select {
	case n.events <- event:
	case <-n.done:
	default:
		// Подписчики не успевают — событие теряется, бронирование нет
		n.logger.Warn("notifier: event buffer full, dropping %s for agenda=%d", kind, agendaID)
	}
}

// Close останавливает диспетчер. Оставшиеся в буфере события не доставляются.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.done)
	})
}

func (n *Notifier) dispatch() {
	for {
		select {
		case <-n.done:
			return
		case event := <-n.events:
			n.deliver(event)
		}
	}
}

func (n *Notifier) deliver(event Event) {
	n.mu.RLock()
	subs := make([]subscription, len(n.subs[event.AgendaID]))
	copy(subs, n.subs[event.AgendaID])
	n.mu.RUnlock()

	for _, s := range subs {
		s.fn(event)
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(event); err != nil {
			n.logger.Error("notifier: external publish failed for agenda=%d: %v", event.AgendaID, err)
		}
	}
}
