package scene

import "math"

// localIDSeed нижняя граница локальных ID. Значения ниже зарезервированы
// под служебные объекты региона; первый выданный ID — localIDSeed+1.
const localIDSeed uint32 = 720000

// AllocateLocalID выдаёт следующий локальный ID объекта сцены.
// Каждое возвращённое значение строго больше всех предыдущих для этой
// сцены; безопасно при любом числе конкурентных вызовов.
//
// Переполнение uint32 — фатальная ошибка: молчаливый wrap нарушил бы
// уникальность, на которую полагается весь остальной код, поэтому
// исчерпание диапазона вызывает панику.
func (s *Scene) AllocateLocalID() uint32 {
	s.idMu.Lock()
	if s.lastLocalID == math.MaxUint32 {
		s.idMu.Unlock()
		panic("scene: диапазон локальных ID исчерпан")
	}
	s.lastLocalID++
	id := s.lastLocalID
	s.idMu.Unlock()

	metricsAllocatedIDs.Inc()
	return id
}
