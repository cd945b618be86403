package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/redrcp.go/pkg/bridge/mqtt"
	"github.com/robotalks/redrcp.go/pkg/config"
	"github.com/robotalks/redrcp.go/pkg/driver"
	"github.com/robotalks/redrcp.go/pkg/metrics"
	"github.com/robotalks/redrcp.go/pkg/service"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load(flag.CommandLine)
	if err != nil {
		glog.Exitln(err)
	}

	drv := driver.New(driver.WithTimeout(conf.Timeout))
	defer drv.Close()

	keeper := service.NewKeeper(drv, conf.Port)
	keeper.Interval = conf.ReconnectInterval
	keeper.OnConnect = func() {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Timeout*2)
		defer cancel()
		model, err := drv.InfoModel(ctx)
		if err != nil {
			glog.Warningf("query model: %v", err)
			return
		}
		fw, err := drv.InfoFirmwareVersion(ctx)
		if err != nil {
			glog.Warningf("query firmware version: %v", err)
			return
		}
		glog.Infof("reader %s firmware %s", model, fw)
	}

	runner := service.NewRunner(context.Background()).HandleSignals()
	runner.Go(keeper)

	if conf.MetricsAddr != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			glog.Exitf("register metrics: %v", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))
		runner.Go(&service.HTTPServer{Addr: conf.MetricsAddr, Handler: mux})
	}

	if conf.MQTTBrokerURL != "" {
		queue, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		if err := queue.Connect(); err != nil {
			glog.Exitf("mqtt connect %s: %v", conf.MQTTBrokerURL, err)
		}
		defer queue.Close()
		b := mqtt.New(queue, drv, conf.ReaderID)
		b.StatusInterval = conf.StatusInterval
		runner.Go(b)
	}

	if err := runner.Wait(); err != nil {
		glog.Errorf("redbridge: %v", err)
	}
}
