package terrain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/annel0/region-host/internal/cache"
	"github.com/annel0/region-host/internal/config"
	"github.com/annel0/region-host/internal/eventbus"
	"github.com/annel0/region-host/internal/logging"
	"github.com/annel0/region-host/internal/scene"
	"github.com/annel0/region-host/internal/storage"
)

// ModuleName имя модуля ландшафта в реестре сцены
const ModuleName = "terrain"

const (
	defaultMapSize   = 256
	defaultMaxHeight = 25.0
	cacheTTL         = 30 * time.Second
)

// Module модуль ландшафта региона. Владеет картой высот, сериализует её
// для передачи клиентам и отвечает за создание растительности.
//
// Реализует scene.RegionModule, scene.TerrainProvider, scene.EntityCreator
// и scene.Commander.
type Module struct {
	info      config.RegionInfo
	log       *logging.Logger
	heightmap *Heightmap
	store     *storage.RegionStorage // Может быть nil — без персистентности
	byteCache cache.ByteCache        // Может быть nil — без кеша
}

// NewModule создаёт модуль ландшафта. Сохранённая карта загружается из
// хранилища; при её отсутствии генерируется новая по сиду.
func NewModule(info config.RegionInfo, seed int64, store *storage.RegionStorage, byteCache cache.ByteCache) (*Module, error) {
	m := &Module{
		info:      info,
		log:       logging.GetTerrainLogger(),
		store:     store,
		byteCache: byteCache,
	}

	if store != nil {
		data, err := store.LoadTerrain(info.RegionID)
		switch {
		case err == nil:
			hm, decErr := decodeHeightmap(data)
			if decErr != nil {
				return nil, fmt.Errorf("повреждённый сохранённый ландшафт: %w", decErr)
			}
			m.heightmap = hm
			m.log.Info("Ландшафт региона %s загружен из хранилища (%dx%d)",
				info.RegionName, hm.Size(), hm.Size())
			return m, nil
		case err != storage.ErrNotFound:
			return nil, fmt.Errorf("загрузка ландшафта: %w", err)
		}
	}

	m.heightmap = NewHeightmap(defaultMapSize)
	m.heightmap.Generate(seed, defaultMaxHeight)
	m.log.Info("Ландшафт региона %s сгенерирован по сиду %d", info.RegionName, seed)
	return m, nil
}

// Setup подключает модуль к сцене: реестр модулей, возможность CapTerrain,
// группа команд и пересылка команд в консоль хоста.
func (m *Module) Setup(s *scene.Scene) error {
	s.AddModule(ModuleName, m)
	s.RegisterModuleInterface(scene.CapTerrain, m)
	s.RegisterModuleCommander(m)

	for name, cmd := range m.Commands() {
		if err := s.AddCommand(m, name, cmd.ShortHelp, cmd.LongHelp, cmd.Fn); err != nil {
			return fmt.Errorf("регистрация команды %s: %w", name, err)
		}
	}
	return nil
}

// Name возвращает имя модуля
func (m *Module) Name() string { return ModuleName }

// Shared сообщает, что модуль принадлежит одной сцене
func (m *Module) Shared() bool { return false }

// Close сохраняет ландшафт при наличии хранилища
func (m *Module) Close() error {
	if m.store == nil {
		return nil
	}
	return m.Save()
}

// Heightmap возвращает карту высот региона
func (m *Module) Heightmap() *Heightmap {
	return m.heightmap
}

// cacheKey ключ сериализованного ландшафта в кеше
func (m *Module) cacheKey() string {
	return fmt.Sprintf("terrain:%s", m.info.RegionID)
}

// Serialize возвращает сериализованную карту высот.
// Горячий путь передачи клиентам: сначала кеш, затем кодирование.
func (m *Module) Serialize() ([]byte, error) {
	ctx := context.Background()

	if m.byteCache != nil {
		if data, err := m.byteCache.Get(ctx, m.cacheKey()); err == nil {
			return data, nil
		} else if err != cache.ErrCacheMiss {
			m.log.Warn("Ошибка чтения кеша ландшафта: %v", err)
		}
	}

	data, err := encodeHeightmap(m.heightmap)
	if err != nil {
		return nil, err
	}

	if m.byteCache != nil {
		if err := m.byteCache.Set(ctx, m.cacheKey(), data, cacheTTL); err != nil {
			m.log.Warn("Ошибка записи кеша ландшафта: %v", err)
		}
	}
	return data, nil
}

// invalidateCache сбрасывает кешированную сериализацию после правок высот
func (m *Module) invalidateCache() {
	if m.byteCache == nil {
		return
	}
	if err := m.byteCache.Delete(context.Background(), m.cacheKey()); err != nil {
		m.log.Warn("Ошибка сброса кеша ландшафта: %v", err)
	}
}

// Save сохраняет сериализованный ландшафт в хранилище
func (m *Module) Save() error {
	if m.store == nil {
		return fmt.Errorf("хранилище не подключено")
	}

	data, err := encodeHeightmap(m.heightmap)
	if err != nil {
		return fmt.Errorf("сериализация ландшафта: %w", err)
	}
	if err := m.store.SaveTerrain(m.info.RegionID, data); err != nil {
		return err
	}

	ev := eventbus.NewEnvelope(m.info.RegionName, eventbus.EventTerrainSaved, nil)
	if err := eventbus.Publish(context.Background(), ev); err != nil {
		m.log.Warn("Не удалось опубликовать событие сохранения ландшафта: %v", err)
	}
	m.log.Info("Ландшафт региона %s сохранён (%d байт)", m.info.RegionName, len(data))
	return nil
}

// CreationCapabilities возвращает коды растительности, создаваемой модулем
func (m *Module) CreationCapabilities() []scene.CreationCode {
	return []scene.CreationCode{scene.CodeGrass, scene.CodeNewTree, scene.CodeTreeLegacy}
}

// CreateEntity создаёт объект растительности с высотой рельефа в payload
func (m *Module) CreateEntity(localID uint32, code scene.CreationCode) (*scene.EntityDescriptor, error) {
	var kind string
	switch code {
	case scene.CodeGrass:
		kind = "grass"
	case scene.CodeNewTree, scene.CodeTreeLegacy:
		kind = "tree"
	default:
		return nil, fmt.Errorf("модуль ландшафта не создаёт объекты с кодом %d", code)
	}

	return &scene.EntityDescriptor{
		LocalID: localID,
		Code:    code,
		Payload: map[string]interface{}{"kind": kind},
	}, nil
}

// Commands возвращает команды группы "terrain"
func (m *Module) Commands() map[string]scene.Command {
	return map[string]scene.Command{
		"fill": {
			Name:      "fill",
			ShortHelp: "Выровнять ландшафт",
			LongHelp:  "fill <высота> — установить одну высоту на всей карте региона",
			Fn:        m.cmdFill,
		},
		"elevate": {
			Name:      "elevate",
			ShortHelp: "Поднять ландшафт",
			LongHelp:  "elevate <дельта> — поднять (или опустить) всю карту на дельту",
			Fn:        m.cmdElevate,
		},
		"show-heights": {
			Name:      "show-heights",
			ShortHelp: "Показать высоту в точке",
			LongHelp:  "show-heights <x> <y> — вывести высоту рельефа в точке",
			Fn:        m.cmdShowHeights,
		},
	}
}

func (m *Module) cmdFill(args []string) {
	if len(args) != 1 {
		m.log.Error("Использование: fill <высота>")
		return
	}
	h, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		m.log.Error("Неверная высота %q: %v", args[0], err)
		return
	}
	m.heightmap.Fill(float32(h))
	m.invalidateCache()
	m.log.Info("Ландшафт выровнен на высоте %.2f", h)
}

func (m *Module) cmdElevate(args []string) {
	if len(args) != 1 {
		m.log.Error("Использование: elevate <дельта>")
		return
	}
	d, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		m.log.Error("Неверная дельта %q: %v", args[0], err)
		return
	}
	m.heightmap.Elevate(float32(d))
	m.invalidateCache()
	m.log.Info("Ландшафт поднят на %.2f", d)
}

func (m *Module) cmdShowHeights(args []string) {
	if len(args) != 2 {
		m.log.Error("Использование: show-heights <x> <y>")
		return
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		m.log.Error("Неверные координаты: %v %v", args[0], args[1])
		return
	}
	h, err := m.heightmap.Height(x, y)
	if err != nil {
		m.log.Error("%v", err)
		return
	}
	m.log.Info("Высота в (%d,%d): %.2f", x, y, h)
}
