package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommander тестовая группа команд
type fakeCommander struct {
	name string
	cmds map[string]Command
}

func (f *fakeCommander) Name() string                 { return f.name }
func (f *fakeCommander) Commands() map[string]Command { return f.cmds }

func newCommander(name string, commands ...string) *fakeCommander {
	cmds := make(map[string]Command, len(commands))
	for _, c := range commands {
		cmds[c] = Command{Name: c, ShortHelp: "короткая справка " + c}
	}
	return &fakeCommander{name: name, cmds: cmds}
}

func TestRegisterModuleCommander_Lookup(t *testing.T) {
	// Зарегистрированные команды доступны через плоское пространство имён
	s := newTestScene()

	s.RegisterModuleCommander(newCommander("terrain", "fill", "elevate"))

	cmd, ok := s.GetCommand("fill")
	require.True(t, ok, "Команда fill должна быть зарегистрирована")
	assert.Equal(t, "fill", cmd.Name)

	owner, ok := s.CommandOwner("fill")
	require.True(t, ok)
	assert.Equal(t, "terrain", owner)

	commander, ok := s.GetCommander("terrain")
	require.True(t, ok, "Коммандер terrain должен быть зарегистрирован")
	assert.Equal(t, "terrain", commander.Name())
}

func TestRegisterModuleCommander_NameCollision(t *testing.T) {
	// Коллизия имени команды между группами: владельцем остаётся
	// зарегистрировавшийся первым, поздняя регистрация отбрасывается
	s := newTestScene()

	s.RegisterModuleCommander(newCommander("terrain", "show"))
	assert.NotPanics(t, func() {
		s.RegisterModuleCommander(newCommander("weather", "show"))
	}, "Коллизия имён не должна вызывать панику")

	owner, ok := s.CommandOwner("show")
	require.True(t, ok)
	assert.Equal(t, "terrain", owner, "Владельцем команды остаётся первый коммандер")

	// Сам коммандер weather при этом зарегистрирован
	_, ok = s.GetCommander("weather")
	assert.True(t, ok)
}

func TestGetCommand_Miss(t *testing.T) {
	// Отсутствие команды или коммандера — не ошибка
	s := newTestScene()

	_, ok := s.GetCommand("nope")
	assert.False(t, ok)

	_, ok = s.GetCommander("nope")
	assert.False(t, ok)
}

func TestGetCommanders_LiveMap(t *testing.T) {
	// GetCommanders отдаёт живую карту реестра, без защитной копии
	s := newTestScene()
	s.RegisterModuleCommander(newCommander("terrain", "fill"))

	m1 := s.GetCommanders()
	s.RegisterModuleCommander(newCommander("weather", "forecast"))

	assert.Len(t, m1, 2, "Полученная ранее карта должна видеть позднюю регистрацию")
}

// recordingSink запоминает пересланные команды
type recordingSink struct {
	commands []string
	modules  []string
}

func (r *recordingSink) AddCommand(module string, shared bool, command, shorthelp, longhelp string, fn CommandFunc) {
	r.modules = append(r.modules, module)
	r.commands = append(r.commands, command)
}

func TestAddCommand_InvalidModule(t *testing.T) {
	// Единственная ошибка реестра команд, которая выходит наружу:
	// обработчик не является модулем региона
	s := newTestScene()
	s.SetCommandSink(&recordingSink{})

	err := s.AddCommand("не модуль", "fill", "s", "l", nil)
	assert.ErrorIs(t, err, ErrNotRegionModule)
}

func TestAddCommand_ForwardsToSink(t *testing.T) {
	// Валидная регистрация пересылается в приёмник с именем модуля
	s := newTestScene()
	sink := &recordingSink{}
	s.SetCommandSink(sink)

	mod := &fakeModule{name: "terrain"}
	err := s.AddCommand(mod, "fill", "короткая", "длинная", func(args []string) {})
	require.NoError(t, err)

	require.Len(t, sink.commands, 1)
	assert.Equal(t, "fill", sink.commands[0])
	assert.Equal(t, "terrain", sink.modules[0])
}

func TestAddCommand_NoSinkIsNoop(t *testing.T) {
	// Без приёмника валидная регистрация — no-op без ошибки
	s := newTestScene()
	mod := &fakeModule{name: "terrain"}
	assert.NoError(t, s.AddCommand(mod, "fill", "s", "l", nil))
}
