package widgets

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the widget registry over HTTP. Each widget can be read,
// refreshed on demand, and paused or resumed independently of the others.
type Handler struct {
	reg *Registry
}

func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/widgets", h.ListWidgets)
	api.GET("/widgets/:name", h.GetWidget)
	api.POST("/widgets/:name/refresh", h.RefreshWidget)
	api.POST("/widgets/:name/pause", h.PauseWidget)
	api.POST("/widgets/:name/resume", h.ResumeWidget)
	api.POST("/widgets/:name/toggle", h.ToggleWidget)
	api.POST("/widgets/redraw", h.RedrawAll)
}

// widgetStatus is the summary row returned by the list endpoint.
type widgetStatus struct {
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Synthetic  bool   `json:"synthetic"`
	LastUpdate string `json:"last_update"`
}

func (h *Handler) ListWidgets(c echo.Context) error {
	all := h.reg.All()
	statuses := make([]widgetStatus, 0, len(all))
	for _, w := range all {
		snap := w.Snapshot()
		statuses = append(statuses, widgetStatus{
			Name:       w.Name(),
			Active:     w.Active(),
			Synthetic:  snap.Synthetic,
			LastUpdate: snap.LastUpdate.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"widgets": statuses})
}

func (h *Handler) GetWidget(c echo.Context) error {
	w, ok := h.reg.Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "widget not found")
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) RefreshWidget(c echo.Context) error {
	w, ok := h.reg.Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "widget not found")
	}
	w.RefreshNow()
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) PauseWidget(c echo.Context) error {
	w, ok := h.reg.Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "widget not found")
	}
	w.Pause()
	return c.JSON(http.StatusOK, map[string]bool{"active": w.Active()})
}

func (h *Handler) ResumeWidget(c echo.Context) error {
	w, ok := h.reg.Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "widget not found")
	}
	w.Resume()
	return c.JSON(http.StatusOK, map[string]bool{"active": w.Active()})
}

func (h *Handler) ToggleWidget(c echo.Context) error {
	w, ok := h.reg.Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "widget not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"active": w.Toggle()})
}

// RedrawAll re-renders every widget from its cached data without hitting the
// data sources. Used after display reconfiguration.
func (h *Handler) RedrawAll(c echo.Context) error {
	h.reg.RedrawAll()
	return c.NoContent(http.StatusNoContent)
}
