// Package jpth talks to a JPTH-13M-PoE pan/tilt head over its HTTP
// CGI interface.
package jpth

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// MaxForce is the largest jog force the head accepts on either axis.
	MaxForce = 31
	// JogDegrees is the angle moved per jog unit, per the device manual.
	JogDegrees = 0.35
)

// ErrMalformed indicates the device response could not be parsed even
// after repair, or was missing a position field.
var ErrMalformed = errors.New("jpth: malformed device response")

// Position is a device-native pan/tilt pair in decimal degrees.
type Position struct {
	Pan  float64
	Tilt float64
}

// Client issues force commands to the head.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func clampForce(force int) int {
	if force > MaxForce {
		return MaxForce
	}
	if force < -MaxForce {
		return -MaxForce
	}
	return force
}

// update matches the CP_Update.xml document. Pointers distinguish a
// missing element from a reported zero.
type update struct {
	XMLName xml.Name `xml:"CP_Update"`
	PanPos  *float64 `xml:"PanPos"`
	TiltPos *float64 `xml:"TiltPos"`
}

const closeMarker = "</AutoPatrol>"

// repair truncates a response at the AutoPatrol closing tag and
// recloses the document. Under fast polling the head races its own
// status writer and emits garbage between that tag and the end of the
// document; everything before the marker is kept untouched.
func repair(body []byte) []byte {
	i := bytes.Index(body, []byte(closeMarker))
	if i < 0 {
		return body
	}
	repaired := make([]byte, 0, i+len(closeMarker)+len("</CP_Update>"))
	repaired = append(repaired, body[:i+len(closeMarker)]...)
	return append(repaired, "</CP_Update>"...)
}

// parseUpdate tries a strict parse, then exactly one repair-and-retry.
func parseUpdate(body []byte) (Position, error) {
	pos, err := parseStrict(body)
	if err == nil {
		return pos, nil
	}
	pos, rerr := parseStrict(repair(body))
	if rerr != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return pos, nil
}

func parseStrict(body []byte) (Position, error) {
	var u update
	if err := xml.Unmarshal(body, &u); err != nil {
		return Position{}, err
	}
	if u.PanPos == nil || u.TiltPos == nil {
		return Position{}, errors.New("missing PanPos or TiltPos")
	}
	return Position{Pan: *u.PanPos, Tilt: *u.TiltPos}, nil
}

// Drive sends one jog command and returns the position the head
// reports afterwards. Forces beyond ±MaxForce are clamped. A zero
// force on both axes leaves the head in place, so Drive(ctx, 0, 0)
// doubles as a position probe.
func (c *Client) Drive(ctx context.Context, panForce, tiltForce int) (Position, error) {
	q := url.Values{}
	q.Set("PCmd", fmt.Sprint(clampForce(panForce)))
	q.Set("TCmd", fmt.Sprint(clampForce(tiltForce)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/CP_Update.xml?"+q.Encode(), nil)
	if err != nil {
		return Position{}, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("motor request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Position{}, fmt.Errorf("reading motor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("motor status %s", resp.Status)
	}
	return parseUpdate(body)
}
