package alerts

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the alert banner state over HTTP and lets operators inject
// a test alert into the channel.
type Handler struct {
	channel   *Channel
	presenter *Presenter
}

func NewHandler(channel *Channel, presenter *Presenter) *Handler {
	return &Handler{channel: channel, presenter: presenter}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/alerts", h.GetCurrent)
	api.POST("/alerts/test", h.InjectTest)
}

// GetCurrent returns the alert currently on screen, if any.
func (h *Handler) GetCurrent(c echo.Context) error {
	text, visible := h.presenter.Current()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"visible": visible,
		"text":    text,
	})
}

// InjectTest pushes a message into the alert channel as if it had arrived
// from the alert source. The message fans out to every subscriber, so the
// banner and any websocket listeners see it too.
func (h *Handler) InjectTest(c echo.Context) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Text == "" {
		body.Text = "test alert"
	}
	h.channel.Inject(body.Text)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "injected"})
}
