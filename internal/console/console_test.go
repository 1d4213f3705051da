package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ExecuteRoutesArgs(t *testing.T) {
	// Строка ввода разбирается на команду и аргументы
	c := NewConsole()

	var got []string
	c.AddCommand("terrain", false, "fill", "s", "l", func(args []string) { got = args })

	require.NoError(t, c.Execute("fill 21.5"))
	assert.Equal(t, []string{"21.5"}, got)

	require.NoError(t, c.Execute("   "))
	assert.Equal(t, []string{"21.5"}, got, "Пустая строка не вызывает команды")
}

func TestConsole_UnknownCommand(t *testing.T) {
	c := NewConsole()
	assert.Error(t, c.Execute("nope"), "Неизвестная команда — ошибка")
}

func TestConsole_CollisionKeepsFirst(t *testing.T) {
	// Имя, занятое ранее, не перерегистрируется
	c := NewConsole()

	var owner string
	c.AddCommand("terrain", false, "show", "s", "l", func(args []string) { owner = "terrain" })
	c.AddCommand("weather", false, "show", "s", "l", func(args []string) { owner = "weather" })

	require.NoError(t, c.Execute("show"))
	assert.Equal(t, "terrain", owner, "Исполняется команда первого модуля")
	assert.Equal(t, []string{"show"}, c.Commands())
}

func TestConsole_Help(t *testing.T) {
	// help и help <команда> не ошибаются для известных команд
	c := NewConsole()
	c.AddCommand("terrain", false, "fill", "короткая", "длинная", func(args []string) {})

	assert.NoError(t, c.Execute("help"))
	assert.NoError(t, c.Execute("help fill"))
	assert.Error(t, c.Execute("help nope"))
}
