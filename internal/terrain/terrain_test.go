package terrain

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/annel0/region-host/internal/cache"
	"github.com/annel0/region-host/internal/config"
	"github.com/annel0/region-host/internal/scene"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegionInfo() config.RegionInfo {
	return config.RegionInfo{
		RegionID:   uuid.New(),
		RegionName: "test-region",
	}
}

func TestHeightmap_GenerateDeterministic(t *testing.T) {
	// Генерация по одному сиду даёт одинаковый рельеф
	a := NewHeightmap(64)
	b := NewHeightmap(64)
	a.Generate(12345, 25)
	b.Generate(12345, 25)

	ha, err := a.Height(10, 20)
	require.NoError(t, err)
	hb, err := b.Height(10, 20)
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "Один сид — одинаковые высоты")

	c := NewHeightmap(64)
	c.Generate(54321, 25)
	different := false
	for y := 0; y < 64 && !different; y++ {
		for x := 0; x < 64 && !different; x++ {
			hc, _ := c.Height(x, y)
			h, _ := a.Height(x, y)
			if hc != h {
				different = true
			}
		}
	}
	assert.True(t, different, "Разные сиды должны давать разный рельеф")
}

func TestHeightmap_Bounds(t *testing.T) {
	// Точки вне карты — ошибка
	hm := NewHeightmap(16)

	_, err := hm.Height(-1, 0)
	assert.Error(t, err)
	_, err = hm.Height(16, 0)
	assert.Error(t, err)
	assert.Error(t, hm.SetHeight(0, 16, 1))

	require.NoError(t, hm.SetHeight(15, 15, 3.5))
	h, err := hm.Height(15, 15)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), h)
}

func TestCodec_Roundtrip(t *testing.T) {
	// Сериализованная карта восстанавливается без потерь
	hm := NewHeightmap(32)
	hm.Generate(777, 25)
	hm.Fill(4.25)
	require.NoError(t, hm.SetHeight(3, 7, 19.5))

	data, err := encodeHeightmap(hm)
	require.NoError(t, err)
	assert.Equal(t, codecMagic, string(data[:4]), "Сериализация начинается с сигнатуры")

	restored, err := decodeHeightmap(data)
	require.NoError(t, err)
	assert.Equal(t, 32, restored.Size())

	h, err := restored.Height(3, 7)
	require.NoError(t, err)
	assert.Equal(t, float32(19.5), h)

	h, err = restored.Height(0, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(4.25), h)
}

func TestCodec_RejectsGarbage(t *testing.T) {
	// Повреждённые данные не восстанавливаются
	_, err := decodeHeightmap([]byte("мусор"))
	assert.Error(t, err)

	_, err = decodeHeightmap(nil)
	assert.Error(t, err)
}

func TestCodec_RejectsCorruptedSize(t *testing.T) {
	// Размер стороны карты из заголовка проверяется до аллокации:
	// повреждённый блоб с size=65535 потребовал бы ~17 ГБ
	forge := func(size uint16) []byte {
		var buf bytes.Buffer
		buf.WriteString(codecMagic)
		buf.WriteByte(codecVersion)
		require.NoError(t, binary.Write(&buf, binary.BigEndian, size))
		return buf.Bytes()
	}

	_, err := decodeHeightmap(forge(0))
	assert.Error(t, err, "Нулевой размер отклоняется")

	_, err = decodeHeightmap(forge(65535))
	assert.Error(t, err, "Размер выше codecMaxSize отклоняется")

	_, err = decodeHeightmap(forge(codecMaxSize + 1))
	assert.Error(t, err, "Граница предела соблюдается строго")
}

func TestModule_SetupRegistersEverything(t *testing.T) {
	// Setup подключает модуль, возможность CapTerrain,
	// индекс создателей и группу команд
	s := scene.NewScene(testRegionInfo())

	m, err := NewModule(testRegionInfo(), 42, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Setup(s))

	got, ok := s.Module(ModuleName)
	require.True(t, ok, "Модуль ландшафта должен быть в реестре")
	assert.Same(t, m, got)

	impl := s.RequestModuleInterface(scene.CapTerrain)
	assert.Same(t, m, impl, "Модуль должен быть канонической реализацией CapTerrain")

	assert.NotNil(t, s.CreatorFor(scene.CodeGrass), "Модуль создаёт траву")
	assert.NotNil(t, s.CreatorFor(scene.CodeNewTree), "Модуль создаёт деревья")
	assert.Nil(t, s.CreatorFor(scene.CodeAvatar), "Аватары — не забота ландшафта")

	_, ok = s.GetCommand("fill")
	assert.True(t, ok, "Команды группы terrain должны быть в плоском пространстве имён")
}

func TestModule_CreateEntity(t *testing.T) {
	// Создание растительности с выданным сценой локальным ID
	s := scene.NewScene(testRegionInfo())
	m, err := NewModule(testRegionInfo(), 42, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Setup(s))

	id := s.AllocateLocalID()
	creator := s.CreatorFor(scene.CodeGrass)
	require.NotNil(t, creator)

	desc, err := creator.CreateEntity(id, scene.CodeGrass)
	require.NoError(t, err)
	assert.Equal(t, id, desc.LocalID)
	assert.Equal(t, "grass", desc.Payload["kind"])

	_, err = creator.CreateEntity(id, scene.CodeAvatar)
	assert.Error(t, err, "Чужой код создания — ошибка")
}

func TestModule_SerializeUsesCache(t *testing.T) {
	// Повторная сериализация отдаётся из кеша;
	// правка высот сбрасывает кеш
	byteCache := cache.NewMemoryCache()
	m, err := NewModule(testRegionInfo(), 42, nil, byteCache)
	require.NoError(t, err)

	first, err := m.Serialize()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.Serialize()
	require.NoError(t, err)
	assert.Equal(t, first, second, "Повторная сериализация идентична (кеш)")

	m.cmdFill([]string{"10"})

	third, err := m.Serialize()
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "После правки высот сериализация должна измениться")

	restored, err := decodeHeightmap(third)
	require.NoError(t, err)
	h, err := restored.Height(5, 5)
	require.NoError(t, err)
	assert.Equal(t, float32(10), h, "Команда fill должна была выровнять карту")
}

func TestModule_SerializeViaScene(t *testing.T) {
	// Сквозной вызов сцены доходит до модуля ландшафта
	s := scene.NewScene(testRegionInfo())
	m, err := NewModule(testRegionInfo(), 42, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Setup(s))

	data, err := s.SerializeTerrain()
	require.NoError(t, err)

	restored, err := decodeHeightmap(data)
	require.NoError(t, err)
	assert.Equal(t, defaultMapSize, restored.Size())
}
