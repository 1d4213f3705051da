package console

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/region-host/internal/logging"
	"github.com/annel0/region-host/internal/scene"
)

// entry зарегистрированная команда консоли
type entry struct {
	module    string
	shared    bool
	shorthelp string
	longhelp  string
	fn        scene.CommandFunc
}

// Console приёмник команд хоста. Сцены пересылают сюда регистрации
// команд своих модулей; строки ввода исполняются через Execute.
//
// Реализует scene.CommandSink.
type Console struct {
	mu       sync.RWMutex
	commands map[string]entry
	log      *logging.Logger
}

// NewConsole создаёт пустую консоль
func NewConsole() *Console {
	return &Console{
		commands: make(map[string]entry),
		log:      logging.GetComponentLogger("console"),
	}
}

// AddCommand регистрирует команду модуля. Имя, занятое ранее,
// не перерегистрируется — коллизия логируется.
func (c *Console) AddCommand(module string, shared bool, command, shorthelp, longhelp string, fn scene.CommandFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, taken := c.commands[command]; taken {
		c.log.Error("Команда %s модуля %s конфликтует с командой модуля %s, регистрация пропущена",
			command, module, existing.module)
		return
	}
	c.commands[command] = entry{
		module:    module,
		shared:    shared,
		shorthelp: shorthelp,
		longhelp:  longhelp,
		fn:        fn,
	}
	c.log.Debug("Команда %s модуля %s зарегистрирована (shared=%v)", command, module, shared)
}

// Execute исполняет строку ввода: "<команда> [аргументы…]".
// "help" выводит список команд, "help <команда>" — подробную справку.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name := fields[0]
	args := fields[1:]

	if name == "help" {
		return c.help(args)
	}

	c.mu.RLock()
	cmd, ok := c.commands[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("неизвестная команда: %s", name)
	}

	cmd.fn(args)
	return nil
}

// help выводит справку по командам
func (c *Console) help(args []string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(args) == 0 {
		names := make([]string, 0, len(c.commands))
		for name := range c.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.log.Info("%-16s %s", name, c.commands[name].shorthelp)
		}
		return nil
	}

	cmd, ok := c.commands[args[0]]
	if !ok {
		return fmt.Errorf("неизвестная команда: %s", args[0])
	}
	c.log.Info("%s", cmd.longhelp)
	return nil
}

// Commands возвращает отсортированный список имён команд
func (c *Console) Commands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
