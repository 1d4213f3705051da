package terrain

import (
	"fmt"
	"sync"

	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина для генерации ландшафта
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3   // Количество октав
	noiseScale   = 64.0
)

// Heightmap карта высот региона, квадратная решётка метров.
type Heightmap struct {
	mu      sync.RWMutex
	size    int
	heights []float32 // Построчно, size*size значений
}

// NewHeightmap создаёт плоскую карту высот указанного размера
func NewHeightmap(size int) *Heightmap {
	return &Heightmap{
		size:    size,
		heights: make([]float32, size*size),
	}
}

// Size возвращает сторону карты высот
func (hm *Heightmap) Size() int {
	return hm.size
}

// Generate заполняет карту шумом Перлина по сиду.
// Высоты лежат в диапазоне [0, maxHeight].
func (hm *Heightmap) Generate(seed int64, maxHeight float64) {
	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)

	hm.mu.Lock()
	defer hm.mu.Unlock()
	for y := 0; y < hm.size; y++ {
		for x := 0; x < hm.size; x++ {
			// Noise2D возвращает значение от -1 до 1, приводим к [0, 1]
			noise := (p.Noise2D(float64(x)/noiseScale, float64(y)/noiseScale) + 1.0) / 2.0
			hm.heights[y*hm.size+x] = float32(noise * maxHeight)
		}
	}
}

// Height возвращает высоту в точке
func (hm *Heightmap) Height(x, y int) (float32, error) {
	if x < 0 || y < 0 || x >= hm.size || y >= hm.size {
		return 0, fmt.Errorf("точка (%d,%d) вне карты %dx%d", x, y, hm.size, hm.size)
	}
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.heights[y*hm.size+x], nil
}

// SetHeight устанавливает высоту в точке
func (hm *Heightmap) SetHeight(x, y int, h float32) error {
	if x < 0 || y < 0 || x >= hm.size || y >= hm.size {
		return fmt.Errorf("точка (%d,%d) вне карты %dx%d", x, y, hm.size, hm.size)
	}
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.heights[y*hm.size+x] = h
	return nil
}

// Fill устанавливает одну высоту на всей карте
func (hm *Heightmap) Fill(h float32) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	for i := range hm.heights {
		hm.heights[i] = h
	}
}

// Elevate поднимает всю карту на delta
func (hm *Heightmap) Elevate(delta float32) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	for i := range hm.heights {
		hm.heights[i] += delta
	}
}

// snapshot возвращает копию высот под read lock
func (hm *Heightmap) snapshot() []float32 {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	out := make([]float32, len(hm.heights))
	copy(out, hm.heights)
	return out
}

// restore заменяет высоты из среза; длина должна быть size*size
func (hm *Heightmap) restore(heights []float32) error {
	if len(heights) != hm.size*hm.size {
		return fmt.Errorf("ожидалось %d высот, получено %d", hm.size*hm.size, len(heights))
	}
	hm.mu.Lock()
	defer hm.mu.Unlock()
	copy(hm.heights, heights)
	return nil
}
