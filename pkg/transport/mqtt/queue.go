// Package mqtt carries protocol lines over an MQTT broker.
//
// A device subscribes <prefix><device>/request and publishes to
// <prefix><device>/response, the host does the opposite. Devices also
// keep a retained <prefix><device>/meta message while online, which is
// how Discover finds them.
package mqtt

import (
	"container/list"
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is called for every received message.
type Handler func(topic string, payload []byte)

// ConnectHandler is called on connect and disconnect.
type ConnectHandler func(*Queue)

// Queue wraps the MQTT client with a topic prefix and local fan-out of
// subscriptions, so one broker subscription serves many handlers.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock     sync.RWMutex
	subs         map[string]*list.List
	wildcardSubs map[string]*list.List
}

// Subscription is a handler registered on a topic.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	elm     *list.Element
	topic   string
	handler Handler
}

// BrokerURL is a parsed mqtt://[user:pass@]host:port/prefix/?device=ID URL.
type BrokerURL struct {
	Options     *paho.ClientOptions
	TopicPrefix string
	Device      string
}

// MatchTopic matches topic against a pattern with + and # wildcards.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) {
			return false
		}
		if token != "+" && token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

// ParseBrokerURL creates client options from URL. The scheme mqtt maps to
// a plain tcp connection.
func ParseBrokerURL(brokerURL string) (*BrokerURL, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	query := u.Query()
	if clientID := query.Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return &BrokerURL{
		Options:     opts,
		TopicPrefix: strings.TrimPrefix(u.Path, "/"),
		Device:      query.Get("device"),
	}, nil
}

// NewQueue creates a Queue. It takes over the connect handlers of options.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{
		TopicPrefix:  topicPrefix,
		subs:         make(map[string]*list.List),
		wildcardSubs: make(map[string]*list.List),
	}
	options.SetOnConnectHandler(q.onConnect)
	options.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(options)
	return q
}

// Connect connects the client and waits for the result.
func (q *Queue) Connect() error {
	token := q.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub registers handler on topic, the topic is relative to TopicPrefix.
func (q *Queue) Sub(topic string, handler Handler) *Subscription {
	wildcard := strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
	sub := &Subscription{queue: q, topic: topic, handler: handler}
	q.subsLock.Lock()
	subs := q.subs
	if wildcard {
		subs = q.wildcardSubs
	}
	lst := subs[topic]
	newSub := lst == nil
	if newSub {
		lst = list.New()
		subs[topic] = lst
	}
	sub.elm = lst.PushBack(sub)
	q.subsLock.Unlock()

	if newSub {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+topic)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+topic, 1, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic relative to TopicPrefix.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 1, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

func (q *Queue) resubscribe() paho.Token {
	filters := make(map[string]byte)
	q.subsLock.RLock()
	for topic := range q.subs {
		filters[q.TopicPrefix+topic] = 1
	}
	for topic := range q.wildcardSubs {
		filters[q.TopicPrefix+topic] = 1
	}
	q.subsLock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("broker connected")
	q.resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

func (q *Queue) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("broker connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

func (q *Queue) handlers(topic string) []Handler {
	var handlers []Handler
	q.subsLock.RLock()
	defer q.subsLock.RUnlock()
	if lst := q.subs[topic]; lst != nil {
		for elm := lst.Front(); elm != nil; elm = elm.Next() {
			handlers = append(handlers, elm.Value.(*Subscription).handler)
		}
	}
	for pattern, lst := range q.wildcardSubs {
		if !MatchTopic(topic, pattern) {
			continue
		}
		for elm := lst.Front(); elm != nil; elm = elm.Next() {
			handlers = append(handlers, elm.Value.(*Subscription).handler)
		}
	}
	return handlers
}

func (q *Queue) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	payload := msg.Payload()
	for _, h := range q.handlers(topic) {
		h(topic, payload)
	}
}

// Close removes the handler, the broker subscription is dropped with
// the last handler of the topic.
func (s *Subscription) Close() error {
	q := s.queue
	var unsub bool
	q.subsLock.Lock()
	for _, subs := range []map[string]*list.List{q.subs, q.wildcardSubs} {
		if lst := subs[s.topic]; lst != nil && s.elm != nil {
			lst.Remove(s.elm)
			s.elm = nil
			if unsub = lst.Len() == 0; unsub {
				delete(subs, s.topic)
			}
			break
		}
	}
	q.subsLock.Unlock()
	if !unsub {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", q.TopicPrefix+s.topic)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.topic)
	token.Wait()
	return token.Error()
}
