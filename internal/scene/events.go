package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/annel0/region-host/internal/config"
	"github.com/annel0/region-host/internal/eventbus"
	"github.com/annel0/region-host/internal/logging"
)

// RestartFunc наблюдатель рестарта региона
type RestartFunc func(info config.RegionInfo, secondsUntilRestart int)

type restartSub struct {
	id int
	fn RestartFunc
}

type shutdownSub struct {
	id int
	fn func()
}

// EventManager рассылает события жизненного цикла сцены.
// Наблюдатели уведомляются синхронно в порядке регистрации;
// ноль подписчиков — не ошибка.
type EventManager struct {
	source string // Имя региона для конвертов шины событий

	mu           sync.Mutex
	nextID       int
	restartSubs  []restartSub
	shutdownSubs []shutdownSub
}

// NewEventManager создаёт менеджер событий для региона
func NewEventManager(source string) *EventManager {
	return &EventManager{source: source}
}

// OnRestart подписывает наблюдателя на рестарт.
// Возвращает функцию отписки.
func (em *EventManager) OnRestart(fn RestartFunc) func() {
	em.mu.Lock()
	defer em.mu.Unlock()
	id := em.nextID
	em.nextID++
	em.restartSubs = append(em.restartSubs, restartSub{id: id, fn: fn})

	return func() {
		em.mu.Lock()
		defer em.mu.Unlock()
		for i, sub := range em.restartSubs {
			if sub.id == id {
				em.restartSubs = append(em.restartSubs[:i], em.restartSubs[i+1:]...)
				return
			}
		}
	}
}

// OnShutdown подписывает наблюдателя на завершение сцены.
// Возвращает функцию отписки.
func (em *EventManager) OnShutdown(fn func()) func() {
	em.mu.Lock()
	defer em.mu.Unlock()
	id := em.nextID
	em.nextID++
	em.shutdownSubs = append(em.shutdownSubs, shutdownSub{id: id, fn: fn})

	return func() {
		em.mu.Lock()
		defer em.mu.Unlock()
		for i, sub := range em.shutdownSubs {
			if sub.id == id {
				em.shutdownSubs = append(em.shutdownSubs[:i], em.shutdownSubs[i+1:]...)
				return
			}
		}
	}
}

// TriggerRestart уведомляет наблюдателей о рестарте через
// secondsUntilRestart секунд. Паника отдельного наблюдателя логируется
// и не мешает остальным.
func (em *EventManager) TriggerRestart(info config.RegionInfo, secondsUntilRestart int) {
	em.mu.Lock()
	subs := make([]restartSub, len(em.restartSubs))
	copy(subs, em.restartSubs)
	em.mu.Unlock()

	for _, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Паника наблюдателя рестарта: %v", r)
				}
			}()
			sub.fn(info, secondsUntilRestart)
		}()
	}

	payload, err := json.Marshal(map[string]interface{}{
		"region_id": info.RegionID,
		"seconds":   secondsUntilRestart,
	})
	if err == nil {
		ev := eventbus.NewEnvelope(em.source, eventbus.EventRestart, payload)
		if err := eventbus.Publish(context.Background(), ev); err != nil {
			logging.Warn("Не удалось опубликовать событие рестарта: %v", err)
		}
	}
}

// TriggerShutdown уведомляет наблюдателей о завершении сцены.
// Ошибки наблюдателей здесь не изолируются: вызывающий (Scene.Close)
// сам перехватывает панику этого сигнала.
func (em *EventManager) TriggerShutdown() {
	em.mu.Lock()
	subs := make([]shutdownSub, len(em.shutdownSubs))
	copy(subs, em.shutdownSubs)
	em.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}

	ev := eventbus.NewEnvelope(em.source, eventbus.EventShutdown, nil)
	if err := eventbus.Publish(context.Background(), ev); err != nil {
		logging.Warn("Не удалось опубликовать событие завершения: %v", err)
	}
}

// RestartSubscribers возвращает число подписчиков рестарта
func (em *EventManager) RestartSubscribers() int {
	em.mu.Lock()
	defer em.mu.Unlock()
	return len(em.restartSubs)
}

// String краткое описание менеджера для диагностики
func (em *EventManager) String() string {
	em.mu.Lock()
	defer em.mu.Unlock()
	return fmt.Sprintf("EventManager{source=%s, restart=%d, shutdown=%d}",
		em.source, len(em.restartSubs), len(em.shutdownSubs))
}
