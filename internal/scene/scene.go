package scene

import (
	"fmt"
	"os"
	"sync"

	"github.com/annel0/region-host/internal/config"
	"github.com/annel0/region-host/internal/logging"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Behavior пользовательское поведение сцены.
// Сцена — конкретный тип; вариативная часть (симуляция, загрузка карты)
// подключается значением Behavior, а не наследованием.
type Behavior interface {
	// Update вызывается на каждом тике симуляции
	Update(dt float64)

	// LoadWorldMap загружает карту мира региона
	LoadWorldMap() error
}

// TerrainProvider возможность сериализации ландшафта региона.
// Регистрируется модулем ландшафта под CapTerrain.
type TerrainProvider interface {
	// Serialize возвращает сериализованную карту высот
	Serialize() ([]byte, error)
}

// Scene управляет регионом: реестром модулей, реестром возможностей,
// реестром команд и выдачей локальных ID объектов.
type Scene struct {
	info config.RegionInfo
	log  *logging.Logger

	// Реестр модулей. Ключ — уникальное имя модуля.
	modMu   sync.RWMutex
	modules map[string]RegionModule

	// Реестр возможностей: тег -> упорядоченный список реализаций.
	// Порядок вставки значим: элемент 0 — канонический ответ на одиночный запрос.
	ifaceMu    sync.RWMutex
	interfaces map[Capability][]interface{}

	// Индекс создателей сущностей: код создания -> ответственный модуль.
	creatMu  sync.RWMutex
	creators map[CreationCode]EntityCreator

	// Реестр команд. Порядок блокировок строго: cmdrMu -> cmdMu.
	cmdrMu     sync.RWMutex
	commanders map[string]Commander
	cmdMu      sync.RWMutex
	commands   map[string]commandEntry

	// Счётчик локальных ID. Отдельный мьютекс, ничем больше не защищается.
	idMu        sync.Mutex
	lastLocalID uint32

	events   *EventManager
	sink     CommandSink
	behavior Behavior
}

// NewScene создаёт сцену региона с пустыми реестрами
func NewScene(info config.RegionInfo) *Scene {
	return &Scene{
		info:        info,
		log:         logging.GetSceneLogger(),
		modules:     make(map[string]RegionModule),
		interfaces:  make(map[Capability][]interface{}),
		creators:    make(map[CreationCode]EntityCreator),
		commanders:  make(map[string]Commander),
		commands:    make(map[string]commandEntry),
		lastLocalID: localIDSeed,
		events:      NewEventManager(info.RegionName),
	}
}

// RegionInfo возвращает метаданные региона
func (s *Scene) RegionInfo() config.RegionInfo {
	return s.info
}

// Events возвращает менеджер событий сцены
func (s *Scene) Events() *EventManager {
	return s.events
}

// SetBehavior подключает поведение сцены. Nil допустим — сцена без поведения.
func (s *Scene) SetBehavior(b Behavior) {
	s.behavior = b
}

// SetCommandSink подключает приёмник команд (консоль).
// Без приёмника AddCommand только регистрирует команду локально.
func (s *Scene) SetCommandSink(sink CommandSink) {
	s.sink = sink
}

// Update передаёт тик подключённому поведению
func (s *Scene) Update(dt float64) {
	if s.behavior != nil {
		s.behavior.Update(dt)
	}
}

// LoadWorldMap загружает карту мира через подключённое поведение
func (s *Scene) LoadWorldMap() error {
	if s.behavior == nil {
		return nil
	}
	return s.behavior.LoadWorldMap()
}

// SerializeTerrain сериализует ландшафт региона через модуль CapTerrain.
// Сквозной вызов: сцена сама ландшафт не хранит.
func (s *Scene) SerializeTerrain() ([]byte, error) {
	impl := s.RequestModuleInterface(CapTerrain)
	if impl == nil {
		return nil, fmt.Errorf("модуль ландшафта не зарегистрирован")
	}
	provider, ok := impl.(TerrainProvider)
	if !ok {
		return nil, fmt.Errorf("реализация CapTerrain не является TerrainProvider: %T", impl)
	}
	return provider.Serialize()
}

// Close останавливает сцену: закрывает все не-shared модули, очищает реестр
// модулей и уведомляет менеджер событий. Сбой закрытия отдельного модуля
// логируется и не прерывает остальную последовательность; наружу ошибки
// не выходят.
func (s *Scene) Close() {
	s.log.Info("Закрытие сцены региона %s", s.info.RegionName)

	s.modMu.Lock()
	for name, mod := range s.modules {
		if mod.Shared() {
			// Жизненным циклом shared модулей владеет хост уровнем выше
			continue
		}
		s.closeModule(name, mod)
	}
	// Очищаем реестр целиком, включая записи shared модулей
	s.modules = make(map[string]RegionModule)
	s.modMu.Unlock()

	metricsAttachedModules.Set(0)

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Паника при уведомлении о завершении: %v", r)
			}
		}()
		s.events.TriggerShutdown()
	}()
}

// closeModule вызывает Close модуля, изолируя ошибки и паники
func (s *Scene) closeModule(name string, mod RegionModule) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Паника при закрытии модуля %s: %v", name, r)
		}
	}()
	if err := mod.Close(); err != nil {
		s.log.Error("Ошибка закрытия модуля %s: %v", name, err)
	}
}

// Restart уведомляет наблюдателей о предстоящем рестарте региона.
// Наблюдатели вызываются в порядке регистрации; их отсутствие — не ошибка.
func (s *Scene) Restart(secondsUntilRestart int) {
	if secondsUntilRestart <= 0 {
		s.log.Warn("Restart вызван с неположительным интервалом %d, игнорируется", secondsUntilRestart)
		return
	}
	s.log.Info("Рестарт региона %s через %d с", s.info.RegionName, secondsUntilRestart)
	metricsRestarts.Inc()
	s.events.TriggerRestart(s.info, secondsUntilRestart)
}

// Show выводит диагностическую информацию по теме.
// "modules" — подключённые не-shared модули, "stats" — ресурсы процесса.
// Неизвестная тема молча игнорируется.
func (s *Scene) Show(topic string) {
	switch topic {
	case "modules":
		s.log.Info("Подключённые модули региона %s:", s.info.RegionName)
		s.modMu.RLock()
		for name, mod := range s.modules {
			if mod.Shared() {
				continue
			}
			s.log.Info("  %s", name)
		}
		s.modMu.RUnlock()
	case "stats":
		s.showStats()
	}
}

// showStats выводит текущие ресурсы процесса хоста
func (s *Scene) showStats() {
	if vm, err := mem.VirtualMemory(); err == nil {
		s.log.Info("Память хоста: использовано %.1f%% (%d МБ из %d МБ)",
			vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		s.log.Info("CPU хоста: %.1f%%", percents[0])
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			s.log.Info("Память процесса: RSS %d МБ", mi.RSS/1024/1024)
		}
	}
}
