package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/publish/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/ws8610/"
	station string
)

func init() {
	if val := os.Getenv("WS8610_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&station, "station", station, "Only monitor the station.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = q.Connect(ctx)
	cancel()
	if err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	mon := &mqtt.Monitor{
		OnMeasure: func(m *msgs.Measure) {
			log.Printf("%s: sensor %d %s %.1f%s", m.Station, m.Address, m.Kind, m.Value, m.Unit)
		},
		OnStats: func(s *msgs.Stats) {
			log.Printf("%s: stats %s", s.Station, s.String())
		},
		OnStation: func(station string, info *msgs.StationInfo) {
			if info == nil || !info.Online {
				log.Printf("%s: offline", station)
				return
			}
			log.Printf("%s: online %s", station, info.String())
		},
	}
	mon.Subscribe(q, station)
	<-(chan struct{})(nil)
}
