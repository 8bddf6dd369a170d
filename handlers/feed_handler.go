package handlers

import (
	"fmt"
	"log"

	config "github.com/classlearning/study_journal/configs"
	ws "github.com/classlearning/study_journal/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type FeedHandler struct {
	Hub *ws.Hub
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// feedUserID extracts the owner from token claims without trusting the claim
// shape; a signed token with a missing or non-string user_id is rejected, not
// a panic.
func feedUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing or malformed user_id claim")
	}
	return uuid.Parse(raw)
}

// ServeFeed streams journal events to the authenticated owner. The first
// frame must be an auth message; the subscription is torn down when the
// connection closes, whichever side closes it.
func (h *FeedHandler) ServeFeed(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	userID, err := feedUserID(claims)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &ws.Client{UserID: userID, Conn: c}
	h.Hub.Register <- client
	defer func() {
		h.Hub.Unregister <- client
		c.Close()
	}()

	// The feed is one-way; keep reading only to notice the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("Journal feed closed for client %s: %v", userID, err)
			} else {
				log.Printf("Journal feed read error for client %s: %v", userID, err)
			}
			return
		}
	}
}
