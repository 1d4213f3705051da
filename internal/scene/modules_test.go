package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModule тестовый модуль региона
type fakeModule struct {
	name     string
	shared   bool
	closed   int
	closeErr error
	panicOn  bool
}

func (m *fakeModule) Name() string { return m.name }
func (m *fakeModule) Shared() bool { return m.shared }
func (m *fakeModule) Close() error {
	m.closed++
	if m.panicOn {
		panic("сбой модуля " + m.name)
	}
	return m.closeErr
}

func TestAddModule_DuplicateIgnored(t *testing.T) {
	// Повторное подключение под занятым именем молча игнорируется:
	// реестр продолжает отдавать первый модуль
	s := newTestScene()

	m1 := &fakeModule{name: "terrain"}
	m2 := &fakeModule{name: "terrain"}

	s.AddModule("terrain", m1)
	s.AddModule("terrain", m2)

	got, ok := s.Module("terrain")
	require.True(t, ok, "Модуль terrain должен быть подключён")
	assert.Same(t, m1, got, "Реестр должен хранить первый подключённый модуль")
	assert.Len(t, s.Modules(), 1, "В реестре ровно один модуль")
}

func TestClose_FaultIsolation(t *testing.T) {
	// Сбой Close одного модуля не мешает закрытию остальных
	// и не выходит из Scene.Close
	s := newTestScene()

	m1 := &fakeModule{name: "a"}
	m2 := &fakeModule{name: "b", closeErr: errors.New("отказ устройства")}
	m3 := &fakeModule{name: "c", panicOn: true}

	s.AddModule("a", m1)
	s.AddModule("b", m2)
	s.AddModule("c", m3)

	assert.NotPanics(t, func() { s.Close() }, "Close не должен пропускать панику наружу")

	assert.Equal(t, 1, m1.closed, "Close модуля a должен быть вызван один раз")
	assert.Equal(t, 1, m2.closed, "Close модуля b должен быть вызван несмотря на ошибку")
	assert.Equal(t, 1, m3.closed, "Close модуля c должен быть вызван несмотря на панику")
	assert.Empty(t, s.Modules(), "Реестр модулей должен быть пуст после Close")
}

func TestClose_SharedModulesNotClosed(t *testing.T) {
	// Close не вызывает хуки shared модулей, но убирает их записи из реестра
	s := newTestScene()

	owned := &fakeModule{name: "terrain"}
	shared := &fakeModule{name: "assets", shared: true}

	s.AddModule("terrain", owned)
	s.AddModule("assets", shared)

	s.Close()

	assert.Equal(t, 1, owned.closed, "Не-shared модуль должен быть закрыт")
	assert.Equal(t, 0, shared.closed, "Shared модуль закрывает хост, а не сцена")
	assert.Empty(t, s.Modules(), "Записи shared модулей тоже удаляются из реестра")
}

func TestClose_EmptySceneIdempotent(t *testing.T) {
	// Close пустой сцены и повторный Close — no-op без ошибок
	s := newTestScene()
	assert.NotPanics(t, func() {
		s.Close()
		s.Close()
	})
	assert.Empty(t, s.Modules())
}

func TestClose_ShutdownObserverPanicAbsorbed(t *testing.T) {
	// Паника наблюдателя завершения логируется и не выходит из Close
	s := newTestScene()
	s.Events().OnShutdown(func() { panic("наблюдатель упал") })

	assert.NotPanics(t, func() { s.Close() })
}
