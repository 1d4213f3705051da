package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/region-host/internal/config"
	"github.com/annel0/region-host/internal/logging"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

// RegionStorage хранилище данных региона поверх BadgerDB:
// сериализованный ландшафт и метаданные региона.
type RegionStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// ErrNotFound возвращается при отсутствии ключа в хранилище.
var ErrNotFound = badger.ErrKeyNotFound

// NewRegionStorage открывает хранилище региона в указанной директории
func NewRegionStorage(dataPath string) (*RegionStorage, error) {
	dbPath := filepath.Join(dataPath, "region")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	logging.Info("Хранилище региона открыто: %s", dbPath)
	return &RegionStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// terrainKey ключ сериализованного ландшафта региона
func terrainKey(regionID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("terrain:%s", regionID))
}

// infoKey ключ метаданных региона
func infoKey(regionID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("info:%s", regionID))
}

// SaveTerrain сохраняет сериализованную карту высот региона
func (rs *RegionStorage) SaveTerrain(regionID uuid.UUID, data []byte) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	if !rs.isReady {
		return fmt.Errorf("хранилище закрыто")
	}

	err := rs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(terrainKey(regionID), data)
	})
	if err != nil {
		return fmt.Errorf("сохранение ландшафта %s: %w", regionID, err)
	}
	return nil
}

// LoadTerrain загружает сериализованную карту высот региона.
// Возвращает ErrNotFound, если ландшафт ещё не сохранялся.
func (rs *RegionStorage) LoadTerrain(regionID uuid.UUID) ([]byte, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	if !rs.isReady {
		return nil, fmt.Errorf("хранилище закрыто")
	}

	var data []byte
	err := rs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(terrainKey(regionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("загрузка ландшафта %s: %w", regionID, err)
	}
	return data, nil
}

// SaveRegionInfo сохраняет метаданные региона в JSON
func (rs *RegionStorage) SaveRegionInfo(info config.RegionInfo) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	if !rs.isReady {
		return fmt.Errorf("хранилище закрыто")
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("сериализация метаданных региона: %w", err)
	}

	err = rs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(infoKey(info.RegionID), data)
	})
	if err != nil {
		return fmt.Errorf("сохранение метаданных региона %s: %w", info.RegionID, err)
	}
	return nil
}

// LoadRegionInfo загружает метаданные региона.
// Возвращает ErrNotFound, если метаданные не сохранялись.
func (rs *RegionStorage) LoadRegionInfo(regionID uuid.UUID) (config.RegionInfo, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	var info config.RegionInfo
	if !rs.isReady {
		return info, fmt.Errorf("хранилище закрыто")
	}

	err := rs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(infoKey(regionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &info)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return info, ErrNotFound
		}
		return info, fmt.Errorf("загрузка метаданных региона %s: %w", regionID, err)
	}
	return info, nil
}

// Close закрывает хранилище
func (rs *RegionStorage) Close() error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	if !rs.isReady {
		return nil
	}
	rs.isReady = false
	return rs.db.Close()
}
