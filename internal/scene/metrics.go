package scene

import "github.com/prometheus/client_golang/prometheus"

// Метрики Prometheus ядра сцены. Регистрируются в глобальном реестре
// при загрузке пакета и отдаются через /metrics REST сервера.
var (
	metricsAllocatedIDs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "local_ids_allocated_total",
		Help:      "Общее число выданных локальных ID объектов.",
	})
	metricsAttachedModules = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "scene",
		Name:      "modules_attached",
		Help:      "Число подключённых модулей региона.",
	})
	metricsCommandCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "command_collisions_total",
		Help:      "Число отброшенных из-за коллизий регистраций команд.",
	})
	metricsRestarts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "restarts_total",
		Help:      "Число объявленных рестартов региона.",
	})
)

func init() {
	prometheus.MustRegister(
		metricsAllocatedIDs,
		metricsAttachedModules,
		metricsCommandCollisions,
		metricsRestarts,
	)
}
