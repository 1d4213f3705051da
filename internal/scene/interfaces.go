package scene

// Capability тег возможности — ключ реестра интерфейсов.
// Закрытое перечисление вместо рефлексии: хранилище реализаций
// однородно (interface{}), тип проверяет потребитель при запросе.
type Capability uint16

// Теги возможностей
const (
	// Базовые возможности региона
	CapTerrain       Capability = iota // 0 — поставщик ландшафта
	CapEntityCreator                   // 1 — создатель сущностей
	CapAssetCache                      // 2 — кеш ассетов
	CapWorldMap                        // 3 — генератор карты мира

	// Для расширения оставляем промежутки между категориями

	// Сервисные возможности (начиная с 100)
	CapChat         Capability = 100 // Чат региона
	CapScriptEngine Capability = 101 // Скриптовый движок
)

// String возвращает имя тега возможности
func (c Capability) String() string {
	switch c {
	case CapTerrain:
		return "terrain"
	case CapEntityCreator:
		return "entity_creator"
	case CapAssetCache:
		return "asset_cache"
	case CapWorldMap:
		return "world_map"
	case CapChat:
		return "chat"
	case CapScriptEngine:
		return "script_engine"
	default:
		return "unknown"
	}
}

// RegisterModuleInterface регистрирует единственную реализацию возможности.
// Первый зарегистрировавшийся выигрывает: если список реализаций для тега
// уже существует, вызов молча игнорируется.
func (s *Scene) RegisterModuleInterface(tag Capability, impl interface{}) {
	s.ifaceMu.Lock()
	if _, exists := s.interfaces[tag]; exists {
		s.ifaceMu.Unlock()
		s.log.Debug("Возможность %s уже зарегистрирована, повторная регистрация игнорируется", tag)
		return
	}
	s.interfaces[tag] = []interface{}{impl}
	s.ifaceMu.Unlock()

	s.log.Debug("Зарегистрирована возможность %s: %T", tag, impl)
	s.hookEntityCreator(impl)
}

// StackModuleInterface добавляет реализацию в стек возможности.
// Один и тот же экземпляр (по identity) в стек не дублируется.
func (s *Scene) StackModuleInterface(tag Capability, impl interface{}) {
	s.ifaceMu.Lock()
	list := s.interfaces[tag]
	for _, existing := range list {
		if existing == impl {
			s.ifaceMu.Unlock()
			s.log.Debug("Экземпляр %T уже в стеке возможности %s", impl, tag)
			return
		}
	}
	s.interfaces[tag] = append(list, impl)
	s.ifaceMu.Unlock()

	s.log.Debug("В стек возможности %s добавлен %T", tag, impl)
	s.hookEntityCreator(impl)
}

// RequestModuleInterface возвращает каноническую (первую зарегистрированную)
// реализацию возможности или nil, если реализаций нет.
// Отсутствие реализации — не ошибка.
func (s *Scene) RequestModuleInterface(tag Capability) interface{} {
	s.ifaceMu.RLock()
	defer s.ifaceMu.RUnlock()
	list, ok := s.interfaces[tag]
	if !ok || len(list) == 0 {
		return nil
	}
	return list[0]
}

// RequestModuleInterfaces возвращает все реализации возможности в порядке
// регистрации.
//
// Для незарегистрированного тега возвращается срез из одного nil-элемента,
// а НЕ пустой срез. Это сохранённая особенность контракта: потребители
// исторически индексируют результат без проверки длины.
func (s *Scene) RequestModuleInterfaces(tag Capability) []interface{} {
	s.ifaceMu.RLock()
	defer s.ifaceMu.RUnlock()
	list, ok := s.interfaces[tag]
	if !ok {
		return []interface{}{nil}
	}
	out := make([]interface{}, len(list))
	copy(out, list)
	return out
}

// hookEntityCreator обновляет индекс создателей, если реализация
// дополнительно умеет создавать сущности
func (s *Scene) hookEntityCreator(impl interface{}) {
	creator, ok := impl.(EntityCreator)
	if !ok {
		return
	}
	s.creatMu.Lock()
	for _, code := range creator.CreationCapabilities() {
		// Последний зарегистрированный создатель кода выигрывает
		s.creators[code] = creator
	}
	s.creatMu.Unlock()
}
