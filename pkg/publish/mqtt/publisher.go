package mqtt

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Topic suffixes under the station.
const (
	MetaTopic  = "meta"
	StatsTopic = "stats"
)

// MeasureTopic returns the topic of measures from a sensor.
func MeasureTopic(station string, addr uint8, kind ws8610.Kind) string {
	return fmt.Sprintf("%s/%d/%s", station, addr, kind)
}

// Publisher publishes measures and stats of a station.
type Publisher struct {
	Queue *Queue
	Info  *msgs.StationInfo
	QoS   byte

	meta []byte
}

// NewPublisher creates a Publisher. The broker replaces the retained station
// info with an offline copy if the station disconnects unexpectedly.
func NewPublisher(brokerURL string, info *msgs.StationInfo) (*Publisher, error) {
	meta, err := msgs.Encode(info)
	if err != nil {
		return nil, err
	}
	will, err := msgs.Encode(info.Offline())
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Station+"/"+MetaTopic, will, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("ws8610:" + info.Station)
	}
	p := &Publisher{Queue: NewQueue(opts, topicPrefix), Info: info, meta: meta}
	p.Queue.OnConnect = func(q *Queue) {
		q.PubWith(info.Station+"/"+MetaTopic, p.meta, 1, true)
	}
	return p, nil
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPublish, p)
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.Queue.Connect(ctx); err != nil {
		return fmt.Errorf("mqtt connect: %v", err)
	}
	<-ctx.Done()
	p.Queue.PubWith(p.Info.Station+"/"+MetaTopic, nil, 1, true).Wait()
	p.Queue.Close()
	return ctx.Err()
}

// Control implements Controller.
func (p *Publisher) Control(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	for _, m := range fx.Measures(cc.Messages()) {
		errs.Add(p.PublishMeasure(m))
	}
	if s, ok := fx.LatestStats(cc.Messages()); ok {
		errs.Add(p.PublishStats(s.Stats, s.Time.UnixMilli()))
	}
	return errs.Aggregate()
}

// PublishMeasure publishes a measure without waiting for delivery.
func (p *Publisher) PublishMeasure(m ws8610.Measure) error {
	payload, err := msgs.Encode(msgs.NewMeasure(p.Info.Station, p.Info.BootID, m))
	if err != nil {
		return err
	}
	token := p.Queue.PubWith(MeasureTopic(p.Info.Station, m.SensorAddress, m.Kind), payload, p.QoS, false)
	go func() {
		if token.Wait(); token.Error() != nil {
			glog.Warningf("publish %s: %v", m, token.Error())
		}
	}()
	return nil
}

// PublishStats publishes the receiver counters retained.
func (p *Publisher) PublishStats(s ws8610.Stats, unixMs int64) error {
	payload, err := msgs.Encode(msgs.NewStats(p.Info.Station, p.Info.BootID, unixMs, s))
	if err != nil {
		return err
	}
	p.Queue.PubWith(p.Info.Station+"/"+StatsTopic, payload, p.QoS, true)
	return nil
}
