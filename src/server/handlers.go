package server

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/hendrywilliam/discord-feed/src/feed"
	"github.com/pkg/errors"
)

type statusResponse struct {
	State    string `json:"state"`
	Message  string `json:"message,omitempty"`
	Text     string `json:"text"`
	Guilds   int    `json:"guilds"`
	Messages int    `json:"messages"`
}

func (server *Server) getStatus(c fiber.Ctx) error {
	status := server.feed.Status()
	return c.JSON(statusResponse{
		State:    status.State,
		Message:  status.Message,
		Text:     status.String(),
		Guilds:   len(server.feed.Guilds()),
		Messages: len(server.feed.Messages()),
	})
}

func (server *Server) getGuilds(c fiber.Ctx) error {
	return c.JSON(server.feed.Guilds())
}

func (server *Server) getGuild(c fiber.Ctx) error {
	guild, ok := server.feed.Guild(c.Params("id"))
	if !ok {
		return fiber.NewError(http.StatusNotFound, "guild not found")
	}
	return c.JSON(guild)
}

// getMessages accepts a comma separated channel_id filter. Without one
// every message is returned.
func (server *Server) getMessages(c fiber.Ctx) error {
	return c.JSON(server.feed.FilterMessages(splitIDs(c.Query("channel_id"))))
}

func (server *Server) getDebugLog(c fiber.Ctx) error {
	return c.JSON(server.feed.DebugLog())
}

type createColumnRequest struct {
	Title      string   `json:"title"`
	ChannelIDs []string `json:"channel_ids"`
}

func (server *Server) getColumns(c fiber.Ctx) error {
	return c.JSON(server.feed.Columns())
}

func (server *Server) createColumn(c fiber.Ctx) error {
	req := new(createColumnRequest)
	if err := c.Bind().JSON(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid column: "+err.Error())
	}
	column := server.feed.AddColumn(req.Title, req.ChannelIDs)
	server.log.Info("column added", "column_id", column.ID, "channels", len(column.ChannelIDs))
	return c.Status(http.StatusCreated).JSON(column)
}

func (server *Server) getColumn(c fiber.Ctx) error {
	id, err := columnID(c)
	if err != nil {
		return err
	}
	column, err := server.feed.Column(id)
	if err != nil {
		return columnError(err)
	}
	return c.JSON(column)
}

func (server *Server) deleteColumn(c fiber.Ctx) error {
	id, err := columnID(c)
	if err != nil {
		return err
	}
	if err := server.feed.RemoveColumn(id); err != nil {
		return columnError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (server *Server) getColumnMessages(c fiber.Ctx) error {
	id, err := columnID(c)
	if err != nil {
		return err
	}
	messages, err := server.feed.ColumnMessages(id)
	if err != nil {
		return columnError(err)
	}
	return c.JSON(messages)
}

func columnID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(http.StatusBadRequest, "invalid column id")
	}
	return id, nil
}

func columnError(err error) error {
	if errors.Is(err, feed.ErrColumnNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return err
}

// control wraps a gateway action. The gateway only queues the work, so
// success means accepted, not connected.
func (server *Server) control(action func() error) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := action(); err != nil {
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		}
		return c.Status(http.StatusAccepted).JSON(server.feed.Status())
	}
}

type loginRequest struct {
	Token string `json:"token"`
}

func (server *Server) login(c fiber.Ctx) error {
	req := new(loginRequest)
	if err := c.Bind().JSON(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid login request")
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return fiber.NewError(http.StatusBadRequest, "token is required")
	}
	if err := server.gateway.Login(token); err != nil {
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
