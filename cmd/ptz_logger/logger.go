// ptz_logger follows the bridge's status websocket and records every
// update in InfluxDB.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
)

var (
	statusURL = flag.String("status_url", "ws://localhost:8502/api/ws", "bridge status websocket URL")
	org       = flag.String("org", "w1xm", "influx organization")
	bucket    = flag.String("bucket", "ptz.raw", "influx bucket")
)

// Status mirrors the fields of the bridge's status JSON.
type Status struct {
	PanPos     float64 `json:"pan_pos"`
	TiltPos    float64 `json:"tilt_pos"`
	TargetPan  float64 `json:"target_pan"`
	TargetTilt float64 `json:"target_tilt"`
	AzPos      float64 `json:"az_pos"`
	ElPos      float64 `json:"el_pos"`
	Moving     bool    `json:"moving"`
	Healthy    bool    `json:"healthy"`
	Failures   int     `json:"failures"`
}

func main() {
	flag.Parse()
	server := os.Getenv("INFLUX_SERVER")
	if server == "" {
		server = "http://localhost:9999"
	}
	client := influxdb2.NewClient(server, os.Getenv("INFLUX_TOKEN"))
	defer client.Close()
	writeApi := client.WriteApi(*org, *bucket)
	defer writeApi.Close()
	errorsCh := writeApi.Errors()
	go func() {
		for err := range errorsCh {
			log.Printf("write error: %v", err)
		}
	}()
	for {
		if err := logData(writeApi); err != nil {
			log.Print(err)
		}
		time.Sleep(1 * time.Second)
	}
}

func logData(writeApi api.WriteApi) error {
	defer writeApi.Flush()
	var dialer websocket.Dialer
	conn, _, err := dialer.Dial(*statusURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	for {
		var status Status
		if err := conn.ReadJSON(&status); err != nil {
			return err
		}
		p := influxdb2.NewPoint("ptz.status",
			nil,
			map[string]interface{}{
				"pan_pos":     status.PanPos,
				"tilt_pos":    status.TiltPos,
				"target_pan":  status.TargetPan,
				"target_tilt": status.TargetTilt,
				"az_pos":      status.AzPos,
				"el_pos":      status.ElPos,
				"moving":      status.Moving,
				"healthy":     status.Healthy,
				"failures":    status.Failures,
			},
			time.Now(),
		)
		// write asynchronously
		writeApi.WritePoint(p)
	}
}
