package scene

// CreationCode дискриминатор класса создаваемого объекта.
// По коду создание маршрутизируется в ответственный модуль.
type CreationCode uint8

// Коды создания объектов
const (
	CodePrimitive      CreationCode = 9   // Примитив
	CodeAvatar         CreationCode = 47  // Аватар
	CodeGrass          CreationCode = 95  // Трава
	CodeNewTree        CreationCode = 111 // Дерево
	CodeParticleSystem CreationCode = 143 // Система частиц
	CodeTreeLegacy     CreationCode = 255 // Дерево (старый формат)
)

// EntityDescriptor описание созданного объекта сцены
type EntityDescriptor struct {
	LocalID uint32                 `json:"local_id"`
	Code    CreationCode           `json:"code"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// EntityCreator возможность создания объектов.
// Реализация, зарегистрированная через реестр возможностей, автоматически
// попадает в индекс создателей по всем своим кодам.
type EntityCreator interface {
	// CreationCapabilities возвращает коды, которые умеет создавать модуль
	CreationCapabilities() []CreationCode

	// CreateEntity создаёт объект с выданным сценой локальным ID
	CreateEntity(localID uint32, code CreationCode) (*EntityDescriptor, error)
}

// CreatorFor возвращает модуль, ответственный за код создания,
// или nil, если создатель не зарегистрирован.
func (s *Scene) CreatorFor(code CreationCode) EntityCreator {
	s.creatMu.RLock()
	defer s.creatMu.RUnlock()
	return s.creators[code]
}
