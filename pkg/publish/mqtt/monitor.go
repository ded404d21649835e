package mqtt

import (
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/ws8610/pkg/msgs"
)

// Monitor decodes messages published by stations.
type Monitor struct {
	OnMeasure func(*msgs.Measure)
	OnStats   func(*msgs.Stats)
	// OnStation is called with nil info, or info not Online, when a station
	// goes offline.
	OnStation func(station string, info *msgs.StationInfo)
}

// Subscribe subscribes to all stations, or the specified one.
func (m *Monitor) Subscribe(q *Queue, station string) *Subscription {
	if station == "" {
		station = "+"
	}
	return q.Sub(station+"/#", m.Dispatch)
}

// Dispatch decodes a message by its topic.
func (m *Monitor) Dispatch(topic string, payload []byte) {
	var err error
	switch {
	case MatchTopic(topic, "+/"+MetaTopic):
		station := strings.SplitN(topic, "/", 2)[0]
		var info *msgs.StationInfo
		if len(payload) > 0 {
			info = &msgs.StationInfo{}
			err = msgs.Decode(payload, info)
		}
		if err == nil && m.OnStation != nil {
			m.OnStation(station, info)
		}
	case MatchTopic(topic, "+/"+StatsTopic):
		var s msgs.Stats
		if err = msgs.Decode(payload, &s); err == nil && m.OnStats != nil {
			m.OnStats(&s)
		}
	case MatchTopic(topic, "+/+/+"):
		if _, err = strconv.ParseUint(strings.Split(topic, "/")[1], 10, 8); err != nil {
			break
		}
		var ms msgs.Measure
		if err = msgs.Decode(payload, &ms); err == nil && m.OnMeasure != nil {
			m.OnMeasure(&ms)
		}
	default:
		glog.V(2).Infof("ignore %q", topic)
	}
	if err != nil {
		glog.Warningf("decode %q: %v", topic, err)
	}
}
