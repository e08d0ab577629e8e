package main

import (
	"context"
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/dmaio/pkg/console"
	"github.com/robotalks/dmaio/pkg/dmaio"
	"github.com/robotalks/dmaio/pkg/env"
	fx "github.com/robotalks/dmaio/pkg/framework"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
	dmaio.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.Default()
	dev, err := conf.NewDevice()
	if err != nil {
		glog.Exitf("create device %q: %v", conf.LinkURL, err)
	}
	t, err := dmaio.Default().Bind(dev)
	if err != nil {
		glog.Exitf("bind %q: %v", conf.LinkURL, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).Go(fx.NamedRun("device", dev))
	publisher, closer, err := conf.NewPublisher(t)
	if err != nil {
		glog.Exitf("telemetry: %v", err)
	}
	if publisher != nil {
		defer closer.Close()
		runner.Go(fx.NamedRun("telemetry", publisher))
	}

	shellErr := console.New(console.NewSession(t, dev)).Run(flag.Args()...)
	cancel()
	if err := runner.Wait(); err != nil {
		glog.Error(err)
	}
	if shellErr != nil {
		glog.Error(shellErr)
		glog.Flush()
		os.Exit(1)
	}
}
