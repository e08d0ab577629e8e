package telemetry

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/dmaio/pkg/dmaio"
)

// DefaultInterval is the default publishing interval.
const DefaultInterval = 5 * time.Second

// StatsSource provides the stats to publish.
type StatsSource interface {
	Stats() dmaio.Stats
}

// PublishFunc delivers an encoded snapshot to a topic.
type PublishFunc func(topic string, payload []byte) error

// Publisher periodically publishes snapshots to <DeviceID>/stats.
type Publisher struct {
	DeviceID string
	Interval time.Duration
	Source   StatsSource
	Publish  PublishFunc
}

// Topic returns the topic snapshots are published to.
func (p *Publisher) Topic() string {
	return p.DeviceID + "/stats"
}

// PublishOnce publishes the current stats.
func (p *Publisher) PublishOnce() error {
	snapshot := FromStats(p.DeviceID, time.Now().UnixNano(), p.Source.Stats())
	payload, err := snapshot.Encode()
	if err != nil {
		return err
	}
	return p.Publish(p.Topic(), payload)
}

// Run implements Runnable. Publish errors are logged and don't stop
// the publisher.
func (p *Publisher) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PublishOnce(); err != nil {
				glog.Warningf("telemetry: publish %s failed: %v", p.Topic(), err)
			}
		}
	}
}
