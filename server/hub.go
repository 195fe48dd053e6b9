package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"xrdplan/calculator"
	"xrdplan/detector"
	"xrdplan/model"
	"xrdplan/reference"
)

var errNoSuchType = errors.New("no such type")

// Hub serves one connection: requests are handled in order on one
// goroutine and replies written on another.
type Hub struct {
	c         calculator.Calculator
	limits    map[string]calculator.Limit
	detectors *detector.Database
	library   *reference.Library

	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	done  chan struct{}
}

func NewHub(c calculator.Calculator, limits map[string]calculator.Limit, detectors *detector.Database, library *reference.Library) *Hub {
	return &Hub{
		c:         c,
		limits:    limits,
		detectors: detectors,
		library:   library,
		msg:       make(chan model.Msg, 10),
		reply:     make(chan model.Msg, 10),
		done:      make(chan struct{}),
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).WithField("type", reply.Type).Error("write")
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			for _, reply := range h.handle(msg) {
				select {
				case h.reply <- reply:
				case <-h.done:
					return
				}
			}
		case <-h.done:
			return
		}
	}
}

// handle applies one request to the session and returns the replies.
func (h *Hub) handle(msg model.Msg) []model.Msg {
	var err error
	switch msg.Type {
	case model.TypeInit:
		return []model.Msg{h.limitsReply(), encode(model.TypeModules, h.modules()), h.contoursReply()}
	case model.TypePose:
		var req model.PoseUpdate
		if err = decode(msg, &req); err == nil {
			if l, ok := h.limits[req.Token]; ok {
				req.Value = l.Clamp(req.Value)
			}
			err = h.c.SetPose(req.Token, req.Value)
		}
	case model.TypeDetector:
		var req model.DetectorSelect
		if err = decode(msg, &req); err == nil {
			if err = h.c.SetDetector(req.Type, req.Size); err == nil {
				return []model.Msg{encode(model.TypeModules, h.modules()), h.contoursReply()}
			}
		}
	case model.TypeReference:
		var req model.ReferenceSelect
		if err = decode(msg, &req); err == nil {
			err = h.setReference(req)
		}
	case model.TypeUnit:
		var req model.UnitSelect
		if err = decode(msg, &req); err == nil {
			var unit calculator.Unit
			if unit, err = calculator.ParseUnit(req.Unit); err == nil {
				err = h.c.SetUnit(unit)
			}
		}
	default:
		err = fmt.Errorf("%w: %q", errNoSuchType, msg.Type)
	}
	if err != nil {
		log.WithError(err).WithField("type", msg.Type).Warn("request")
		return []model.Msg{{Type: model.TypeError, Content: err.Error()}}
	}
	return []model.Msg{h.contoursReply()}
}

func (h *Hub) setReference(req model.ReferenceSelect) error {
	if len(req.Reflections) > 0 {
		name := req.Name
		if name == "" {
			name = "structure"
		}
		h.c.SetReference(reference.FromReflections(name, req.Reflections))
		return nil
	}
	ref, err := h.library.Resolve(req.Name)
	if err != nil {
		return err
	}
	h.c.SetReference(ref)
	return nil
}

func (h *Hub) limitsReply() model.Msg {
	detectors := make(map[string][]string)
	for _, name := range h.detectors.Types() {
		sizes, err := h.detectors.Sizes(name)
		if err != nil {
			continue
		}
		detectors[name] = sizes
	}
	return encode(model.TypeLimits, model.Limits{
		Pose:       h.c.Pose(),
		Limits:     h.limits,
		Detectors:  detectors,
		Calibrants: append([]string{reference.None}, h.library.Names()...),
		Units:      calculator.UnitLabels(),
	})
}

func (h *Hub) modules() model.Modules {
	return model.Modules{
		Detector: h.c.Detector(),
		Modules:  h.c.Modules(),
		Viewport: h.c.Viewport(),
	}
}

func (h *Hub) contoursReply() model.Msg {
	return encode(model.TypeContours, h.c.Contours())
}

func decode(msg model.Msg, v interface{}) error {
	if err := json.Unmarshal([]byte(msg.Content), v); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	return nil
}

func encode(typ string, v interface{}) model.Msg {
	data, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).WithField("type", typ).Error("encode")
		return model.Msg{Type: model.TypeError, Content: err.Error()}
	}
	return model.Msg{Type: typ, Content: string(data)}
}
