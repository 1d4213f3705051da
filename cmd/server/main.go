package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/region-host/internal/api"
	"github.com/annel0/region-host/internal/cache"
	"github.com/annel0/region-host/internal/config"
	"github.com/annel0/region-host/internal/console"
	"github.com/annel0/region-host/internal/eventbus"
	"github.com/annel0/region-host/internal/logging"
	"github.com/annel0/region-host/internal/middleware"
	"github.com/annel0/region-host/internal/observability"
	"github.com/annel0/region-host/internal/scene"
	"github.com/annel0/region-host/internal/storage"
	"github.com/annel0/region-host/internal/terrain"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV REGION_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("region-host"); err != nil {
		log.Fatalf("Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("Запуск хоста региона...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
		logging.Info("Конфигурация не задана, используются значения по умолчанию")
	}
	info := cfg.RegionInfo()
	logging.Info("Регион: %s (%s) @ %d,%d", info.RegionName, info.RegionID, info.LocationX, info.LocationY)

	// === ТЕЛЕМЕТРИЯ ===
	ctx := context.Background()
	shutdownTelemetry, err := observability.InitTelemetry(ctx, "region-host", info.RegionName)
	if err != nil {
		logging.Warn("Телеметрия недоступна: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		retention := time.Duration(cfg.EventBus.Retention) * time.Hour
		jsBus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, retention)
		if err != nil {
			logging.Error("Ошибка подключения к NATS: %v", err)
			log.Fatalf("Ошибка подключения к NATS: %v", err)
		}
		defer jsBus.Close()
		bus = jsBus
		logging.Info("Шина событий: NATS JetStream %s", cfg.EventBus.URL)
	} else {
		bus = eventbus.NewMemoryBus(1024)
		logging.Info("Шина событий: in-memory")
	}
	eventbus.Init(bus)
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Не удалось подписать лог-слушателя шины: %v", err)
	}
	busMetrics := eventbus.NewMetricsExporter(bus)
	busMetrics.Start()
	defer busMetrics.Stop()

	// === КЕШ ===
	var byteCache cache.ByteCache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
		if err != nil {
			logging.Error("Ошибка подключения к Redis: %v", err)
			log.Fatalf("Ошибка подключения к Redis: %v", err)
		}
		byteCache = redisCache
	} else {
		byteCache = cache.NewMemoryCache()
		logging.Info("Кеш: in-memory")
	}
	defer byteCache.Close()

	// === ХРАНИЛИЩЕ ===
	var store *storage.RegionStorage
	if cfg.Storage.DataPath != "" {
		store, err = storage.NewRegionStorage(cfg.Storage.DataPath)
		if err != nil {
			logging.Error("Ошибка открытия хранилища: %v", err)
			log.Fatalf("Ошибка открытия хранилища: %v", err)
		}
		defer store.Close()
		if err := store.SaveRegionInfo(info); err != nil {
			logging.Warn("Не удалось сохранить метаданные региона: %v", err)
		}
	}

	// === СЦЕНА И МОДУЛИ ===
	sc := scene.NewScene(info)
	cons := console.NewConsole()
	sc.SetCommandSink(cons)

	terrainModule, err := terrain.NewModule(info, cfg.Region.Seed, store, byteCache)
	if err != nil {
		logging.Error("Ошибка создания модуля ландшафта: %v", err)
		log.Fatalf("Ошибка создания модуля ландшафта: %v", err)
	}
	if err := terrainModule.Setup(sc); err != nil {
		logging.Error("Ошибка подключения модуля ландшафта: %v", err)
		log.Fatalf("Ошибка подключения модуля ландшафта: %v", err)
	}

	// Логируем объявленные рестарты региона
	sc.Events().OnRestart(func(info config.RegionInfo, seconds int) {
		logging.Warn("Регион %s будет перезапущен через %d с", info.RegionName, seconds)
	})

	sc.Show("modules")

	// === REST API ===
	restServer := api.NewRestServer(api.Config{
		Port:    fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Scene:   sc,
		Console: cons,
	})
	restServer.Start()

	// Метрики отдаются выделенным листенером, отдельно от REST API
	metricsServer := middleware.StartMetricsServer(cfg.Server.GetMetricsPort())
	defer metricsServer.Close()

	logging.Info("Хост региона запущен")
	logging.Info("   REST API: http://localhost:%d", cfg.Server.GetRESTPort())
	logging.Info("   Метрики: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())

	// === ЗАВЕРШЕНИЕ ПО СИГНАЛУ ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("Получен сигнал %v, завершение...", sig)

	sc.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("Ошибка завершения телеметрии: %v", err)
	}

	logging.Info("Хост региона остановлен")
}
