package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"xrdplan/calculator"
	"xrdplan/detector"
	"xrdplan/preview"
	"xrdplan/reference"
	"xrdplan/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var (
	confPath = flag.String("conf", "conf/config.ini", "configuration file")
	addr     = flag.String("addr", "", "listen address, overrides [server] addr")
	snapshot = flag.String("snapshot", "", "render the configured scene to a .png or .webp file and exit")
	size     = flag.Int("size", 800, "snapshot width in pixels")
)

func main() {
	flag.Parse()

	file, err := ini.Load(*confPath)
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}
	level, err := log.ParseLevel(file.Section("log").Key("level").MustString("info"))
	if err != nil {
		log.WithError(err).Warn("log level")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	cfg, err := calculator.LoadConfig(file)
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}
	detectors, err := detector.LoadDatabase(cfg.Detector.Database)
	if err != nil {
		log.WithError(err).Fatal("load detector database")
	}
	library, err := reference.LoadLibrary(cfg.Reference.Library)
	if err != nil {
		log.WithError(err).Fatal("load calibrant library")
	}

	if *snapshot != "" {
		if err := render(cfg, detectors, library, *snapshot, *size); err != nil {
			log.WithError(err).Fatal("snapshot")
		}
		return
	}

	srvCfg := server.LoadConfig(file)
	if *addr != "" {
		srvCfg.Addr = *addr
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	s := server.NewServer(srvCfg.Addr, upgrader, cfg, detectors, library)
	if err := s.Serve(); err != nil {
		log.WithError(err).Fatal("ListenAndServe")
	}
}

// render draws the configured session once.
func render(cfg calculator.Config, detectors *detector.Database, library *reference.Library, path string, width int) error {
	c, err := calculator.NewCalculator(cfg, detectors)
	if err != nil {
		return err
	}
	ref, err := library.Resolve(cfg.Reference.Name)
	if err != nil {
		return err
	}
	c.SetReference(ref)

	img, err := preview.Render(preview.Scene{
		Modules:  c.Modules(),
		Viewport: c.Viewport(),
		Contours: c.Contours(),
	}, width)
	if err != nil {
		return err
	}
	if err := preview.WriteFile(path, img); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"file":     path,
		"detector": c.Detector().Name + " " + c.Detector().Size,
		"primary":  len(c.Contours().Primary),
		"overlay":  len(c.Contours().Reference),
	}).Info("snapshot written")
	return nil
}
