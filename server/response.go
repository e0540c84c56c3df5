package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

// Unit of the departure state.
const Unit = "min"

var icons = map[string]string{
	feed.ProductSuburban: "mdi:subway-variant",
	feed.ProductSubway:   "mdi:subway",
	feed.ProductTram:     "mdi:tram",
	feed.ProductBus:      "mdi:bus",
	feed.ProductRegional: "mdi:train",
	feed.ProductFerry:    "mdi:ferry",
	feed.ProductExpress:  "mdi:train",
}

// Icon maps a transport kind to its display icon; unknown kinds get mdi:clock.
func Icon(product string) string {
	if icon, ok := icons[product]; ok {
		return icon
	}
	return "mdi:clock"
}

// DepartureResponse is the JSON model of a reading.
type DepartureResponse struct {
	Name       string            `json:"name"`
	State      string            `json:"state"`
	Unit       string            `json:"unit"`
	Icon       string            `json:"icon"`
	Attributes map[string]string `json:"attributes"`
	Source     string            `json:"source"`
	Connection string            `json:"connection"`
	Diagnostic string            `json:"diagnostic"`
	TickID     string            `json:"tick_id"`
	UpdatedAt  string            `json:"updated_at"`
}

// NewDepartureResponse builds the JSON model of r for the sensor called name.
func NewDepartureResponse(name string, r monitor.Reading) DepartureResponse {
	attrs := r.Attributes()
	return DepartureResponse{
		Name:       name,
		State:      r.State(),
		Unit:       Unit,
		Icon:       Icon(attrs[monitor.AttrType]),
		Attributes: attrs,
		Source:     r.Source.String(),
		Connection: r.Connection.String(),
		Diagnostic: r.Diagnostic.String(),
		TickID:     r.TickID,
		UpdatedAt:  r.At.Format(time.RFC3339),
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Connection string `json:"connection,omitempty"`
	LastTick   string `json:"last_tick,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
