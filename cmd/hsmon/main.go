// hsmon prints the traffic of every device on an MQTT broker.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
	"github.com/robotalks/hardsync.go/pkg/transport/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/hardsync/"
	docPath string
)

func init() {
	if val := os.Getenv("HARDSYNC_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&docPath, "contract", docPath, "Contract document for a custom encoding.")
}

// describe renders a message published on topic, relative to the prefix.
func describe(enc protocol.Encoding, topic string, payload []byte) string {
	device, kind, ok := strings.Cut(topic, "/")
	if !ok {
		return fmt.Sprintf("%s: %q", topic, payload)
	}
	switch kind {
	case mqtt.MetaTopic:
		if len(payload) == 0 {
			return fmt.Sprintf("%s: offline", device)
		}
		return fmt.Sprintf("%s: online as %s", device, payload)
	case mqtt.RequestTopic, mqtt.ResponseTopic:
	default:
		return fmt.Sprintf("%s: %q", topic, payload)
	}
	arrow := "->"
	if kind == mqtt.ResponseTopic {
		arrow = "<-"
	}
	line := transport.TrimTerminator(string(payload), enc.Terminator)
	call, err := enc.Decode(line)
	if err != nil {
		return fmt.Sprintf("%s %s bad line %q: %v", device, arrow, line, err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s", device, arrow, call.Name)
	for _, arg := range call.Args.Slice() {
		fmt.Fprintf(&sb, " %s=%q", arg.Key, arg.Value)
	}
	return sb.String()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	enc := protocol.DefaultEncoding()
	if docPath != "" {
		doc, err := contract.LoadFile(docPath)
		if err != nil {
			log.Fatalln(err)
		}
		if enc, err = doc.ProtocolEncoding(); err != nil {
			log.Fatalln(err)
		}
	}

	u, err := mqtt.ParseBrokerURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(u.Options, u.TopicPrefix)
	q.Sub("#", func(topic string, payload []byte) {
		log.Println(describe(enc, topic, payload))
	})
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
