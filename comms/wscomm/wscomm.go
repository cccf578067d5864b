// Package wscomm is the "websocket" communicator class. Every connected
// client receives readings and statuses as JSON text messages; a client
// that connects late first gets the latest status of every object.
package wscomm

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"sensornode-go/comms"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

const Class = "websocket"

const writeWait = 5 * time.Second

type Config struct {
	Name       string
	Path       string
	MaxClients int
	Buffer     int // queued messages per client before dropping
}

func ConfigFrom(o jsondoc.Object) Config {
	return Config{
		Name:       o.NonEmpty("name", Class),
		Path:       o.NonEmpty("path", "/ws"),
		MaxClients: int(o.Int("max_clients", 8)),
		Buffer:     int(o.Int("buffer", 32)),
	}
}

func (c Config) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("path", c.Path)
	o.Set("max_clients", c.MaxClients)
	o.Set("buffer", c.Buffer)
}
func (c Config) ExpectedCapacity() int { return 4 }

func Register(f *factory.Factory, env comms.Env) {
	f.Register(Class, func(frag jsondoc.Object) factory.Result {
		return f.CommunicatorFactory(New(ConfigFrom(frag), env), frag)
	})
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Communicator struct {
	model.CommunicatorBase
	cfg      Config
	log      *slog.Logger
	upgrader websocket.Upgrader
	dropped  atomic.Uint64

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    map[string][]byte // latest status message per source
	closed  bool
}

func New(cfg Config, env comms.Env) *Communicator {
	if cfg.MaxClients < 1 {
		cfg.MaxClients = 1
	}
	if cfg.Buffer < 1 {
		cfg.Buffer = 1
	}
	c := &Communicator{
		cfg:     cfg,
		log:     env.Log(),
		clients: make(map[*client]struct{}),
		last:    make(map[string][]byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 1024,
		},
	}
	c.InitCommunicator(c, cfg.Name, Class)
	return c
}

// Route is the HTTP path the handler expects to be mounted on.
func (c *Communicator) Route() string { return c.cfg.Path }

func (c *Communicator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	full := len(c.clients) >= c.cfg.MaxClients || c.closed
	c.mu.RUnlock()
	if full {
		http.Error(w, "no client slots", http.StatusServiceUnavailable)
		return
	}
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.log.Warn("websocket upgrade", "err", err)
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, c.cfg.Buffer)}
	if !c.add(cl) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "no client slots"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	go c.readPump(cl)
	c.writePump(cl)
}

// add registers cl and queues the latest statuses for it. The slot check is
// repeated here since upgrades run concurrently.
func (c *Communicator) add(cl *client) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(c.clients) >= c.cfg.MaxClients {
		return false
	}
	keys := make([]string, 0, len(c.last))
	for k := range c.last {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		select {
		case cl.send <- c.last[k]:
		default:
		}
	}
	c.clients[cl] = struct{}{}
	return true
}

func (c *Communicator) remove(cl *client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.clients[cl]; ok {
		delete(c.clients, cl)
		close(cl.send)
	}
}

// readPump drains client frames so close frames and disconnects are seen.
func (c *Communicator) readPump(cl *client) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read", "err", err)
			}
			c.remove(cl)
			return
		}
	}
}

func (c *Communicator) writePump(cl *client) {
	defer cl.conn.Close()
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.remove(cl)
			// Drain so remove's close ends the range.
			for range cl.send {
			}
			return
		}
	}
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *Communicator) broadcast(msg comms.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("websocket encode", "err", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.Kind == comms.KindStatus {
		c.last[msg.Source] = data
	}
	for cl := range c.clients {
		select {
		case cl.send <- data:
		default:
			c.dropped.Add(1)
		}
	}
}

func (c *Communicator) NewReading(b model.MeasurementBundle) { c.broadcast(comms.Reading(b)) }

func (c *Communicator) NewStatus(status model.Measurement, src model.Object) {
	c.broadcast(comms.Status(status, src))
}

// Loop tracks whether anyone is listening.
func (c *Communicator) Loop() {
	if c.Clients() > 0 {
		c.NetworkConnected()
	} else {
		c.NetworkDisconnected()
	}
}

func (c *Communicator) Clients() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Dropped counts messages not queued because a client was too slow.
func (c *Communicator) Dropped() uint64 { return c.dropped.Load() }

// Close disconnects every client and refuses new ones.
func (c *Communicator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for cl := range c.clients {
		delete(c.clients, cl)
		close(cl.send)
	}
	return nil
}

func (c *Communicator) Config() model.Configuration { return c.cfg }
