package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/dmaio/pkg/framework"
	"github.com/robotalks/dmaio/pkg/link/mqtt"
	"github.com/robotalks/dmaio/pkg/telemetry"
)

var (
	mqttURL    = "mqtt://localhost:1883/"
	outputJSON bool
)

func init() {
	if val := os.Getenv("DMAIO_TELEMETRY_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print snapshots in JSON.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	if err := q.Connect(); err != nil {
		glog.Exitf("connect %s: %v", mqttURL, err)
	}
	defer q.Close()

	q.Sub("+"+mqtt.StatsTopicSuffix, mqtt.Handler(func(topic string, payload []byte) {
		s, err := telemetry.Decode(payload)
		if err != nil {
			glog.Warningf("%s: bad snapshot: %v", topic, err)
			return
		}
		if outputJSON {
			out, _ := json.Marshal(s)
			glog.Infof("%s: %s", topic, out)
			return
		}
		glog.Infof("%s: %s", topic, s.String())
	}))
	<-fx.NewRunner().HandleSignals().Context.Done()
}
