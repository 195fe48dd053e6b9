package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"xrdplan/calculator"
	"xrdplan/detector"
	"xrdplan/model"
	"xrdplan/reference"
)

// Config is the [server] section.
type Config struct {
	Addr string
}

func LoadConfig(file *ini.File) Config {
	return Config{
		Addr: file.Section("server").Key("addr").MustString(":9000"),
	}
}

type Server struct {
	addr      string
	upgrader  websocket.Upgrader
	cfg       calculator.Config
	detectors *detector.Database
	library   *reference.Library
}

func NewServer(addr string, upgrader websocket.Upgrader, cfg calculator.Config, detectors *detector.Database, library *reference.Library) *Server {
	return &Server{
		addr:      addr,
		upgrader:  upgrader,
		cfg:       cfg,
		detectors: detectors,
		library:   library,
	}
}

// serveWs handles websocket requests from the peer. Every connection gets
// its own calculator session.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	c, err := calculator.NewCalculator(s.cfg, s.detectors)
	if err != nil {
		log.WithError(err).Error("start session")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ref, err := s.library.Resolve(s.cfg.Reference.Name); err != nil {
		log.WithError(err).Warn("configured reference")
	} else {
		c.SetReference(ref)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("upgrade")
		return
	}
	defer conn.Close()

	hub := NewHub(c, s.cfg.Limits, s.detectors, s.library)
	hub.conn = conn
	defer close(hub.done)
	go hub.handleRequest()
	go hub.handleResponse()

	log.WithField("remote", r.RemoteAddr).Info("session opened")
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("read")
			}
			log.WithField("remote", r.RemoteAddr).Info("session closed")
			return
		}
		hub.msg <- msg
	}
}

// Handler routes /ws to the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("listening")
	return http.ListenAndServe(s.addr, s.Handler())
}
