package api

import (
	"fmt"
	"net/http"

	"github.com/annel0/region-host/internal/console"
	"github.com/annel0/region-host/internal/logging"
	"github.com/annel0/region-host/internal/middleware"
	"github.com/annel0/region-host/internal/scene"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer административный REST API хоста региона.
// Отдаёт состояние реестров сцены и принимает команды управления.
type RestServer struct {
	router *gin.Engine
	scene  *scene.Scene
	cons   *console.Console
	port   string
	log    *logging.Logger
}

// Config содержит конфигурацию REST сервера
type Config struct {
	Port    string // порт для запуска сервера, например ":9000"
	Scene   *scene.Scene
	Console *console.Console // может быть nil
}

// NewRestServer создаёт административный REST сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":9000"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	// Метрики и логи запросов несут имя региона; сами /metrics отдаются
	// выделенным листенером (middleware.StartMetricsServer), не этим роутером.
	region := config.Scene.RegionInfo().RegionName

	loggerMw := middleware.NewRequestLogger(region)
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("admin_api"))

	promMw := middleware.NewPrometheusMiddleware("admin_api", region)
	router.Use(promMw.Handler())

	server := &RestServer{
		router: router,
		scene:  config.Scene,
		cons:   config.Console,
		port:   config.Port,
		log:    logging.GetAPILogger(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/region", rs.handleRegion)
		api.GET("/modules", rs.handleModules)
		api.GET("/commands", rs.handleCommands)
		api.POST("/restart", rs.handleRestart)
		api.POST("/console", rs.handleConsole)
		api.GET("/terrain", rs.handleTerrain)
	}
}

// Start запускает REST сервер в отдельной горутине
func (rs *RestServer) Start() {
	go func() {
		rs.log.Info("Административный REST API слушает %s", rs.port)
		if err := rs.router.Run(rs.port); err != nil {
			rs.log.Error("Ошибка REST сервера: %v", err)
		}
	}()
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (rs *RestServer) handleRegion(c *gin.Context) {
	c.JSON(http.StatusOK, rs.scene.RegionInfo())
}

func (rs *RestServer) handleModules(c *gin.Context) {
	type moduleInfo struct {
		Name   string `json:"name"`
		Shared bool   `json:"shared"`
	}
	modules := rs.scene.Modules()
	out := make([]moduleInfo, 0, len(modules))
	for name, mod := range modules {
		out = append(out, moduleInfo{Name: name, Shared: mod.Shared()})
	}
	c.JSON(http.StatusOK, gin.H{"modules": out})
}

func (rs *RestServer) handleCommands(c *gin.Context) {
	names := rs.scene.CommandNames()
	type commandInfo struct {
		Name      string `json:"name"`
		Owner     string `json:"owner"`
		ShortHelp string `json:"short_help"`
	}
	out := make([]commandInfo, 0, len(names))
	for _, name := range names {
		cmd, _ := rs.scene.GetCommand(name)
		owner, _ := rs.scene.CommandOwner(name)
		out = append(out, commandInfo{Name: name, Owner: owner, ShortHelp: cmd.ShortHelp})
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

func (rs *RestServer) handleRestart(c *gin.Context) {
	var req struct {
		Seconds int `json:"seconds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Seconds <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seconds должен быть положительным"})
		return
	}

	rs.scene.Restart(req.Seconds)
	c.JSON(http.StatusOK, gin.H{"status": "restart scheduled", "seconds": req.Seconds})
}

func (rs *RestServer) handleConsole(c *gin.Context) {
	if rs.cons == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "консоль не подключена"})
		return
	}

	var req struct {
		Line string `json:"line" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rs.cons.Execute(req.Line); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "executed"})
}

// handleTerrain отдаёт сериализованный ландшафт региона
func (rs *RestServer) handleTerrain(c *gin.Context) {
	data, err := rs.scene.SerializeTerrain()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=terrain-%s.bin",
		rs.scene.RegionInfo().RegionID))
	c.Data(http.StatusOK, "application/octet-stream", data)
}
