package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"zebraprint/pkg/metrics"
	"zebraprint/pkg/monitor"
)

func watch(c *cli.Context, s *session) error {
	interval := s.cfg.MonitorInterval
	if c.IsSet("interval") {
		interval = c.Duration("interval")
	}
	metricsAddr := s.cfg.MetricsAddr
	if c.IsSet("metrics-addr") {
		metricsAddr = c.String("metrics-addr")
	}

	// Channel to listen for interrupt or terminate signals
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensurePrinter(c, s); err != nil {
		return err
	}

	opts := []monitor.Option{
		monitor.WithInterval(interval),
		monitor.WithLogger(log.StandardLogger()),
	}

	if s.cfg.MQTT.Broker != "" {
		pub, err := monitor.NewMQTTPublisher(monitor.MQTTOptions{
			Broker:    s.cfg.MQTT.Broker,
			Username:  s.cfg.MQTT.Username,
			Password:  s.cfg.MQTT.Password,
			TopicRoot: s.cfg.MQTT.TopicRoot,
		}, log.StandardLogger())
		if err != nil {
			return err
		}
		defer pub.Close()
		log.Infof("Publishing status to %s on %s", pub.Topic(), s.cfg.MQTT.Broker)
		opts = append(opts, monitor.WithPublisher(pub))
	}

	mon := monitor.New(s.client, opts...)

	var wg sync.WaitGroup
	var srv *http.Server

	if metricsAddr != "" {
		srv = &http.Server{
			Addr:    metricsAddr,
			Handler: metrics.Handler(),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Debugf("Metrics server started on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("Could not listen on %s: %v", srv.Addr, err)
				stop()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		mon.Run(ctx)
	}()

	<-ctx.Done()

	log.Info("Shutting down...")

	if srv != nil {
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx2); err != nil {
			return fmt.Errorf("metrics server forced to shutdown: %v", err)
		}
	}

	wg.Wait()
	log.Info("Stopped")
	return nil
}
