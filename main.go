package main

import (
	"flag"

	"github.com/signstack/creative-server/config"
	"github.com/signstack/creative-server/router"
	"github.com/signstack/creative-server/server"

	"github.com/golang/glog"
	"github.com/spf13/viper"
)

// Rev holds the binary revision string.
// Set at build time:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD`"
var Rev string

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	if err := serve(Rev, cfg); err != nil {
		glog.Exitf("creative-server failed: %v", err)
	}
}

const configFileName = "creative-server"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(revision string, cfg *config.Configuration) error {
	r, err := router.New(cfg)
	if err != nil {
		return err
	}

	corsRouter := router.SupportCORS(r)
	admin := router.NoCache{Handler: router.Admin(revision, r.CreativeCache, r.Metrics)}
	server.Listen(cfg, corsRouter, admin)

	r.Shutdown()
	return nil
}
