package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/websocket"
	ws "github.com/gorilla/websocket"
)

// wsDeliverer pushes samples over the realtime channel. The connection
// is dialed lazily and dropped on any write failure so the next tick
// retries with a fresh token.
type wsDeliverer struct {
	endpoint string
	client   *APIClient
	dialer   *ws.Dialer
	conn     *ws.Conn
}

func newWSDeliverer(apiURL string, client *APIClient) (*wsDeliverer, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/ws"

	return &wsDeliverer{
		endpoint: u.String(),
		client:   client,
		dialer: &ws.Dialer{
			HandshakeTimeout: 3 * time.Second,
		},
	}, nil
}

func (d *wsDeliverer) Name() string { return "websocket" }

func (d *wsDeliverer) Deliver(ctx context.Context, sample *domain.LocationSample) error {
	if d.conn == nil {
		endpoint := d.endpoint + "?token=" + url.QueryEscape(d.client.Token())
		conn, _, err := d.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}
		d.conn = conn
	}

	msg, err := websocket.NewMessage(websocket.MessageTypePublishLocation,
		websocket.PublishLocationPayload{Sample: *sample})
	if err != nil {
		return err
	}

	d.conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := d.conn.WriteJSON(msg); err != nil {
		d.conn.Close()
		d.conn = nil
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

func (d *wsDeliverer) Close() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

// apiDeliverer submits samples through POST /api/v1/locations.
type apiDeliverer struct {
	client *APIClient
}

func (d *apiDeliverer) Name() string { return "api" }

func (d *apiDeliverer) Deliver(_ context.Context, sample *domain.LocationSample) error {
	body := map[string]interface{}{
		"deviceId":   sample.DeviceID.String(),
		"latitude":   sample.Latitude,
		"longitude":  sample.Longitude,
		"street":     sample.Street,
		"city":       sample.City,
		"placeName":  sample.PlaceName,
		"contextTag": sample.ContextTag,
		"recordedAt": sample.RecordedAt.Format(time.RFC3339Nano),
	}
	if sample.Speed != nil {
		body["speed"] = *sample.Speed
	}
	if sample.Heading != nil {
		body["heading"] = *sample.Heading
	}

	return d.client.PostLocation(body)
}
