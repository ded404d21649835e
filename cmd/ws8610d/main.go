package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/env"
)

var configFile string

func init() {
	env.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "Configuration file (yaml, toml or json).")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			log.Fatalln(err)
		}
	}
	e := conf.MustNewEnv()
	defer e.Close()

	glog.Infof("station %s receiving from %s", e.Info.Station, e.Info.Source)
	loop := fx.NewLoop().Add(e)
	err := fx.NewRunner().HandleSignals().Go(loop).Wait()
	if err != nil && err != fx.ErrForcedExit {
		log.Fatalln(err)
	}
}
