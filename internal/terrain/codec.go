package terrain

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Формат сериализации ландшафта: заголовок + gzip-поток float32 высот.
const (
	codecMagic   = "RHTM"
	codecVersion = uint8(1)

	// Верхняя граница стороны карты в заголовке. Размер из повреждённого
	// блоба нельзя пускать в make: 65535×65535 float32 — это ~17 ГБ.
	codecMaxSize = 4096
)

// encodeHeightmap сериализует карту высот в компактный gzip-формат
func encodeHeightmap(hm *Heightmap) ([]byte, error) {
	heights := hm.snapshot()

	var buf bytes.Buffer
	buf.WriteString(codecMagic)
	buf.WriteByte(codecVersion)
	if err := binary.Write(&buf, binary.BigEndian, uint16(hm.Size())); err != nil {
		return nil, fmt.Errorf("запись заголовка: %w", err)
	}

	zw := gzip.NewWriter(&buf)
	if err := binary.Write(zw, binary.BigEndian, heights); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("сжатие высот: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("завершение gzip-потока: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeHeightmap восстанавливает карту высот из сериализованного вида
func decodeHeightmap(data []byte) (*Heightmap, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(codecMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("чтение заголовка: %w", err)
	}
	if string(magic) != codecMagic {
		return nil, fmt.Errorf("неверная сигнатура ландшафта: %q", magic)
	}

	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("чтение версии: %w", err)
	}
	if version != codecVersion {
		return nil, fmt.Errorf("неподдерживаемая версия формата ландшафта: %d", version)
	}

	var size uint16
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return nil, fmt.Errorf("чтение размера: %w", err)
	}
	if size == 0 || size > codecMaxSize {
		return nil, fmt.Errorf("недопустимый размер карты в заголовке: %d", size)
	}

	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("открытие gzip-потока: %w", err)
	}
	defer zr.Close()

	heights := make([]float32, int(size)*int(size))
	if err := binary.Read(zr, binary.BigEndian, heights); err != nil {
		return nil, fmt.Errorf("чтение высот: %w", err)
	}

	hm := NewHeightmap(int(size))
	if err := hm.restore(heights); err != nil {
		return nil, err
	}
	return hm, nil
}
