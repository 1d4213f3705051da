package scene

import (
	"context"

	"github.com/annel0/region-host/internal/eventbus"
)

// RegionModule подключаемое расширение региона.
// Shared модули обслуживают несколько сцен; их Close вызывает хост,
// а не сцена.
type RegionModule interface {
	// Name возвращает уникальное имя модуля
	Name() string

	// Shared сообщает, разделяется ли модуль между сценами
	Shared() bool

	// Close освобождает ресурсы модуля
	Close() error
}

// AddModule подключает модуль под указанным именем.
// Если имя уже занято, вызов молча игнорируется — ни ошибки, ни замены.
// Это унаследованное поведение реестра; вызывающие на него полагаются.
func (s *Scene) AddModule(name string, mod RegionModule) {
	s.modMu.Lock()
	if _, exists := s.modules[name]; exists {
		s.modMu.Unlock()
		s.log.Debug("Модуль %s уже подключён, повторное подключение игнорируется", name)
		return
	}
	s.modules[name] = mod
	count := len(s.modules)
	s.modMu.Unlock()

	metricsAttachedModules.Set(float64(count))
	s.log.Info("Подключён модуль %s (shared=%v)", name, mod.Shared())

	ev := eventbus.NewEnvelope(s.info.RegionName, eventbus.EventModuleAttached, []byte(name))
	if err := eventbus.Publish(context.Background(), ev); err != nil {
		s.log.Warn("Не удалось опубликовать событие подключения модуля %s: %v", name, err)
	}
}

// Module возвращает модуль по имени
func (s *Scene) Module(name string) (RegionModule, bool) {
	s.modMu.RLock()
	defer s.modMu.RUnlock()
	mod, ok := s.modules[name]
	return mod, ok
}

// Modules возвращает снимок реестра модулей.
// Снимок безопасно использовать после возврата; живую карту наружу не отдаём.
func (s *Scene) Modules() map[string]RegionModule {
	s.modMu.RLock()
	defer s.modMu.RUnlock()
	snapshot := make(map[string]RegionModule, len(s.modules))
	for name, mod := range s.modules {
		snapshot[name] = mod
	}
	return snapshot
}
