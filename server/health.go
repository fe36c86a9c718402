package server

import (
	"log"
	"net/http"
	"runtime"

	"guardian-bot/utils/database"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthServer exposes liveness and system probes over HTTP.
type HealthServer struct {
	echo  *echo.Echo
	store *database.Store
}

func NewHealthServer(store *database.Store) *HealthServer {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	h := &HealthServer{echo: e, store: store}
	e.GET("/", h.handleRoot)
	e.GET("/health", h.handleHealth)
	e.GET("/health/system", h.handleSystem)
	return h
}

// Start blocks serving HTTP until Shutdown or a listen error.
func (h *HealthServer) Start(addr string) error {
	log.Printf("Health server listening on %s", addr)
	return h.echo.Start(addr)
}

func (h *HealthServer) Close() error {
	return h.echo.Close()
}

func (h *HealthServer) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, "guardian-bot is running")
}

func (h *HealthServer) handleHealth(c echo.Context) error {
	if err := h.store.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthServer) handleSystem(c echo.Context) error {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	info := map[string]any{
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"cpu_count":  cpuCount,
	}
	if len(cpuPercent) > 0 {
		info["cpu_percent"] = cpuPercent[0]
	}
	if vm != nil {
		info["mem_used_percent"] = vm.UsedPercent
		info["mem_total_mb"] = vm.Total / 1024 / 1024
	}
	if hostInfo != nil {
		info["os"] = hostInfo.Platform + " " + hostInfo.PlatformVersion
		info["kernel"] = hostInfo.KernelVersion
	}
	return c.JSON(http.StatusOK, info)
}
