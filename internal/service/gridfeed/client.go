package gridfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"GridCast/internal/domain/models"
	drepo "GridCast/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a PriceStream backed by a grid operator WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	markets        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new grid feed PriceStream.
func New(apiKey, websocketURL string, markets []string, reconnectDelay, pingInterval time.Duration) drepo.PriceStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		markets:        markets,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("gridfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("gridfeed: connected")
	return nil
}

// Subscribe subscribes to configured markets.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("gridfeed not connected")
	}
	for _, m := range c.markets {
		msg := map[string]string{"type": "subscribe", "market": m}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", m, err)
		}
		log.Printf("gridfeed: subscribed %s", m)
	}
	return nil
}

type feedPrice struct {
	Market       string  `json:"market"`
	Region       string  `json:"region"`
	PriceType    string  `json:"price_type"`
	Price        float64 `json:"price"`
	TS           int64   `json:"ts"` // ms
	ForecastedAt int64   `json:"forecasted_at,omitempty"`
	Horizon      float64 `json:"horizon,omitempty"`
}

type feedMessage struct {
	Type string      `json:"type"`
	Data []feedPrice `json:"data"`
}

// Read streams PriceRecord events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceRecord, <-chan error) {
	records := make(chan *models.PriceRecord, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(records)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("gridfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gridfeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-price frames
					continue
				}
				if m.Type != "price" {
					continue
				}
				for _, d := range m.Data {
					rec := &models.PriceRecord{
						Market:       d.Market,
						Region:       d.Region,
						PriceType:    string(drepo.NormalizePriceType(d.PriceType)),
						Timestamp:    time.Unix(d.TS/1000, 0).UTC(),
						Price:        d.Price,
						HorizonHours: d.Horizon,
					}
					if d.ForecastedAt > 0 {
						fa := time.Unix(d.ForecastedAt/1000, 0).UTC()
						rec.ForecastedAt = &fa
					}
					select {
					case records <- rec:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return records, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
