package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/transport"
)

// Role selects the topic orientation of a Transport.
type Role int

// Roles.
const (
	// DeviceRole receives requests and publishes responses.
	DeviceRole Role = iota
	// HostRole publishes requests and receives responses.
	HostRole
)

// String implements fmt.Stringer.
func (r Role) String() string {
	if r == HostRole {
		return "host"
	}
	return "device"
}

// Topic names relative to the device.
const (
	RequestTopic  = "request"
	ResponseTopic = "response"
	MetaTopic     = "meta"
)

// DefaultDiscoverTimeout bounds Discover when ctx has no deadline.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// ErrNoDevice indicates the broker URL doesn't name a device.
var ErrNoDevice = errors.New("mqtt: device not specified")

// Transport implements transport.LineTransport on top of a Queue.
type Transport struct {
	Queue      *Queue
	Device     string
	Role       Role
	SubTopic   string
	PubTopic   string
	Terminator string

	lines *transport.LineQueue
	sub   *Subscription
}

// NewTransport creates a Transport for device on an existing Queue.
func NewTransport(q *Queue, device string, role Role, terminator string) *Transport {
	t := &Transport{
		Queue:      q,
		Device:     device,
		Role:       role,
		Terminator: terminator,
		lines:      transport.NewLineQueue(0),
	}
	req, resp := device+"/"+RequestTopic, device+"/"+ResponseTopic
	if role == HostRole {
		t.SubTopic, t.PubTopic = resp, req
	} else {
		t.SubTopic, t.PubTopic = req, resp
	}
	return t
}

// Dial connects to the broker in URL and subscribes the incoming topic.
// The device comes from the device query parameter.
func Dial(brokerURL string, role Role, terminator string) (*Transport, error) {
	u, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if u.Device == "" {
		return nil, ErrNoDevice
	}
	if u.Options.ClientID == "" {
		u.Options.SetClientID(fmt.Sprintf("hardsync:%s:%s", role, u.Device))
	}
	metaTopic := u.Device + "/" + MetaTopic
	if role == DeviceRole {
		u.Options.SetBinaryWill(u.TopicPrefix+metaTopic, nil, 1, true)
	}
	q := NewQueue(u.Options, u.TopicPrefix)
	t := NewTransport(q, u.Device, role, terminator)
	if role == DeviceRole {
		q.OnConnect = func(q *Queue) {
			q.PubWith(metaTopic, []byte(u.Device), 1, true)
		}
	}
	t.Subscribe()
	if err := q.Connect(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", brokerURL, err)
	}
	return t, nil
}

// Subscribe starts receiving lines. Dial calls it.
func (t *Transport) Subscribe() {
	if t.sub == nil {
		t.sub = t.Queue.Sub(t.SubTopic, t.handleMsg)
	}
}

// Available implements transport.LineTransport.
func (t *Transport) Available() bool {
	return t.lines.Available()
}

// ReadLine implements transport.LineTransport.
func (t *Transport) ReadLine(ctx context.Context) (string, error) {
	return t.lines.ReadLine(ctx)
}

// WriteLine implements transport.LineTransport, one message per line.
func (t *Transport) WriteLine(line []byte) error {
	glog.V(2).Infof("PUB %s %q", t.PubTopic, line)
	token := t.Queue.Pub(t.PubTopic, line)
	token.Wait()
	return token.Error()
}

// Run implements fx.Runnable. It keeps the transport until ctx is done,
// then withdraws the device announcement and disconnects.
func (t *Transport) Run(ctx context.Context) error {
	<-ctx.Done()
	t.Close()
	return ctx.Err()
}

// Close unsubscribes and disconnects.
func (t *Transport) Close() error {
	if t.sub != nil {
		t.sub.Close()
		t.sub = nil
	}
	if t.Role == DeviceRole {
		t.Queue.PubWith(t.Device+"/"+MetaTopic, nil, 1, true).Wait()
	}
	t.lines.Close()
	return t.Queue.Close()
}

func (t *Transport) handleMsg(_ string, payload []byte) {
	line := transport.TrimTerminator(string(payload), t.Terminator)
	glog.V(2).Infof("RCV %s %q", t.SubTopic, line)
	if err := t.lines.Push(context.Background(), line); err != nil {
		glog.Warningf("line dropped on %s: %v", t.SubTopic, err)
	}
}

// Discover lists the devices announced on the broker.
func Discover(ctx context.Context, brokerURL string) ([]string, error) {
	u, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	q := NewQueue(u.Options, u.TopicPrefix)
	if err := q.Connect(); err != nil {
		return nil, err
	}
	defer q.Close()

	found := make(chan string, 16)
	sub := q.Sub("+/"+MetaTopic, func(topic string, payload []byte) {
		if len(payload) == 0 {
			return
		}
		select {
		case found <- strings.TrimSuffix(topic, "/"+MetaTopic):
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	var timeout <-chan time.Time
	if _, ok := ctx.Deadline(); !ok {
		timeout = time.After(DefaultDiscoverTimeout)
	}
	seen := make(map[string]struct{})
	var devices []string
	for {
		select {
		case device := <-found:
			if _, ok := seen[device]; !ok {
				seen[device] = struct{}{}
				devices = append(devices, device)
			}
		case <-timeout:
			return devices, nil
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return devices, nil
			}
			return devices, ctx.Err()
		}
	}
}
