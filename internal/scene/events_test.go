package scene

import (
	"testing"

	"github.com/annel0/region-host/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventManager_RestartOrder(t *testing.T) {
	// Наблюдатели рестарта уведомляются в порядке регистрации
	em := NewEventManager("test-region")

	var order []string
	em.OnRestart(func(info config.RegionInfo, seconds int) { order = append(order, "first") })
	em.OnRestart(func(info config.RegionInfo, seconds int) { order = append(order, "second") })
	em.OnRestart(func(info config.RegionInfo, seconds int) { order = append(order, "third") })

	em.TriggerRestart(config.RegionInfo{RegionName: "test-region"}, 30)

	assert.Equal(t, []string{"first", "second", "third"}, order,
		"Порядок доставки должен совпадать с порядком регистрации")
}

func TestEventManager_RestartPayload(t *testing.T) {
	// Наблюдатель получает метаданные региона и интервал
	em := NewEventManager("test-region")

	var gotName string
	var gotSeconds int
	em.OnRestart(func(info config.RegionInfo, seconds int) {
		gotName = info.RegionName
		gotSeconds = seconds
	})

	em.TriggerRestart(config.RegionInfo{RegionName: "plaza"}, 120)

	assert.Equal(t, "plaza", gotName)
	assert.Equal(t, 120, gotSeconds)
}

func TestEventManager_NoSubscribersIsNoop(t *testing.T) {
	// Рестарт без подписчиков — не ошибка
	em := NewEventManager("test-region")
	assert.NotPanics(t, func() {
		em.TriggerRestart(config.RegionInfo{}, 10)
		em.TriggerShutdown()
	})
}

func TestEventManager_Unsubscribe(t *testing.T) {
	// Отписанный наблюдатель не уведомляется; порядок остальных сохраняется
	em := NewEventManager("test-region")

	var order []string
	em.OnRestart(func(info config.RegionInfo, seconds int) { order = append(order, "a") })
	unsub := em.OnRestart(func(info config.RegionInfo, seconds int) { order = append(order, "b") })
	em.OnRestart(func(info config.RegionInfo, seconds int) { order = append(order, "c") })

	unsub()
	require.Equal(t, 2, em.RestartSubscribers())

	em.TriggerRestart(config.RegionInfo{}, 5)
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestEventManager_RestartObserverPanicIsolated(t *testing.T) {
	// Паника одного наблюдателя не мешает остальным
	em := NewEventManager("test-region")

	var survived bool
	em.OnRestart(func(info config.RegionInfo, seconds int) { panic("наблюдатель упал") })
	em.OnRestart(func(info config.RegionInfo, seconds int) { survived = true })

	assert.NotPanics(t, func() { em.TriggerRestart(config.RegionInfo{}, 5) })
	assert.True(t, survived, "Второй наблюдатель должен быть уведомлён")
}

func TestEventManager_ShutdownOrder(t *testing.T) {
	// Наблюдатели завершения уведомляются в порядке регистрации
	em := NewEventManager("test-region")

	var order []int
	em.OnShutdown(func() { order = append(order, 1) })
	em.OnShutdown(func() { order = append(order, 2) })

	em.TriggerShutdown()
	assert.Equal(t, []int{1, 2}, order)
}

func TestScene_RestartNonPositiveIgnored(t *testing.T) {
	// Неположительный интервал рестарта игнорируется
	s := newTestScene()

	var called bool
	s.Events().OnRestart(func(info config.RegionInfo, seconds int) { called = true })

	s.Restart(0)
	s.Restart(-5)
	assert.False(t, called, "Наблюдатели не должны уведомляться о невалидном рестарте")

	s.Restart(10)
	assert.True(t, called)
}
