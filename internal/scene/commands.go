package scene

import "errors"

// ErrNotRegionModule возвращается AddCommand, когда переданный обработчик
// не является модулем региона. Единственная ошибка реестра команд,
// которая выходит наружу.
var ErrNotRegionModule = errors.New("scene: обработчик команды не является RegionModule")

// CommandFunc обработчик команды консоли
type CommandFunc func(args []string)

// Command именованная команда с текстами справки и обработчиком
type Command struct {
	Name      string
	ShortHelp string
	LongHelp  string
	Fn        CommandFunc
}

// Commander именованная группа связанных команд
type Commander interface {
	// Name возвращает уникальное имя группы
	Name() string

	// Commands возвращает команды группы по имени
	Commands() map[string]Command
}

// CommandSink приёмник регистраций команд (консоль хоста).
// Сцена только пересылает регистрации; отсутствие приёмника — no-op.
type CommandSink interface {
	AddCommand(module string, shared bool, command, shorthelp, longhelp string, fn CommandFunc)
}

// commandEntry запись плоского пространства имён команд
type commandEntry struct {
	cmd   Command
	owner string // Имя коммандера-владельца
}

// RegisterModuleCommander регистрирует группу команд и вносит её команды
// в плоское глобальное пространство имён. Коллизия имени команды между
// группами логируется, поздняя регистрация отбрасывается — владельцем
// остаётся зарегистрировавшийся первым.
//
// Порядок блокировок фиксирован: cmdrMu снаружи, cmdMu внутри.
func (s *Scene) RegisterModuleCommander(commander Commander) {
	s.cmdrMu.Lock()
	defer s.cmdrMu.Unlock()

	s.commanders[commander.Name()] = commander

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	for name, cmd := range commander.Commands() {
		if existing, taken := s.commands[name]; taken {
			metricsCommandCollisions.Inc()
			s.log.Error("Команда %s коммандера %s конфликтует с командой коммандера %s, регистрация пропущена",
				name, commander.Name(), existing.owner)
			continue
		}
		s.commands[name] = commandEntry{cmd: cmd, owner: commander.Name()}
	}
}

// GetCommand возвращает команду из глобального пространства имён
func (s *Scene) GetCommand(name string) (Command, bool) {
	s.cmdMu.RLock()
	defer s.cmdMu.RUnlock()
	entry, ok := s.commands[name]
	return entry.cmd, ok
}

// CommandOwner возвращает имя коммандера-владельца команды
func (s *Scene) CommandOwner(name string) (string, bool) {
	s.cmdMu.RLock()
	defer s.cmdMu.RUnlock()
	entry, ok := s.commands[name]
	return entry.owner, ok
}

// GetCommander возвращает группу команд по имени
func (s *Scene) GetCommander(name string) (Commander, bool) {
	s.cmdrMu.RLock()
	defer s.cmdrMu.RUnlock()
	commander, ok := s.commanders[name]
	return commander, ok
}

// GetCommanders возвращает живую карту групп команд.
// Карта — внутреннее хранилище реестра; вызывающие не должны её изменять
// и не должны рассчитывать на защитную копию.
func (s *Scene) GetCommanders() map[string]Commander {
	s.cmdrMu.RLock()
	defer s.cmdrMu.RUnlock()
	return s.commanders
}

// CommandNames возвращает снимок имён зарегистрированных команд
func (s *Scene) CommandNames() []string {
	s.cmdMu.RLock()
	defer s.cmdMu.RUnlock()
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	return names
}

// AddCommand пересылает регистрацию команды в приёмник (консоль хоста).
// mod обязан быть RegionModule — иначе возвращается ErrNotRegionModule.
// Отсутствие приёмника делает вызов no-op.
func (s *Scene) AddCommand(mod interface{}, command, shorthelp, longhelp string, fn CommandFunc) error {
	module, ok := mod.(RegionModule)
	if !ok {
		return ErrNotRegionModule
	}
	if s.sink == nil {
		return nil
	}
	s.sink.AddCommand(module.Name(), module.Shared(), command, shorthelp, longhelp, fn)
	return nil
}
