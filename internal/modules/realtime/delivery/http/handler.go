package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"anoa.com/safereport/internal/entity"
	realtime "anoa.com/safereport/internal/modules/realtime/service"
	"anoa.com/safereport/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const maxChannelsPerConnection = 5

// ReportLookup resolves report ownership for channel authorization.
type ReportLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
}

type RealtimeHandler struct {
	redisClient *redis.Client
	reports     ReportLookup
	upgrader    websocket.Upgrader
}

func NewRealtimeHandler(redisClient *redis.Client, reports ReportLookup, allowedOrigins []string) *RealtimeHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &RealtimeHandler{
		redisClient: redisClient,
		reports:     reports,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

var errChannelForbidden = errors.New("channel not allowed")

// authorize checks that the caller may listen on every requested channel.
func (h *RealtimeHandler) authorize(ctx context.Context, userID uuid.UUID, role string, channels []string) error {
	for _, ch := range channels {
		if role == entity.RoleAdmin {
			continue
		}
		if ch == realtime.ChannelAnnouncements {
			continue
		}

		reportID, ok := realtime.ParseReportChannel(ch)
		if !ok {
			return errChannelForbidden
		}
		report, err := h.reports.FindByID(ctx, reportID)
		if err != nil || !report.OwnedBy(userID) {
			return errChannelForbidden
		}
	}
	return nil
}

func parseChannels(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, ch := range strings.Split(raw, ",") {
		ch = strings.TrimSpace(ch)
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out
}

// HandleWebSocket upgrades the request and forwards change events on the
// requested channels until either side disconnects.
func (h *RealtimeHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	channels := parseChannels(c.Query("channel"))
	if len(channels) == 0 || len(channels) > maxChannelsPerConnection {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel must name between 1 and 5 channels"})
		return
	}

	if err := h.authorize(c.Request.Context(), userID, response.GetRole(c), channels); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime updates are not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	redisChannels := make([]string, len(channels))
	for i, ch := range channels {
		redisChannels[i] = realtime.RedisChannel(ch)
	}

	pubsub := h.redisClient.Subscribe(c.Request.Context(), redisChannels...)
	defer pubsub.Close()

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		log.Printf("Failed to subscribe to redis channels: %v", err)
		return
	}

	ch := pubsub.Channel()
	clientClosed := make(chan struct{})

	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
