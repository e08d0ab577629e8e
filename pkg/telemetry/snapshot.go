// Package telemetry publishes transport counters of a device.
package telemetry

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/dmaio/pkg/dmaio"
)

// Snapshot is the published form of dmaio.Stats.
type Snapshot struct {
	DeviceID      string `protobuf:"bytes,1,opt,name=device_id,proto3" json:"device_id,omitempty"`
	Timestamp     int64  `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Capacity      uint32 `protobuf:"varint,3,opt,name=capacity,proto3" json:"capacity,omitempty"`
	Bound         bool   `protobuf:"varint,4,opt,name=bound,proto3" json:"bound,omitempty"`
	Echo          bool   `protobuf:"varint,5,opt,name=echo,proto3" json:"echo,omitempty"`
	TxAccepted    uint64 `protobuf:"varint,6,opt,name=tx_accepted,proto3" json:"tx_accepted,omitempty"`
	TxOverruns    uint64 `protobuf:"varint,7,opt,name=tx_overruns,proto3" json:"tx_overruns,omitempty"`
	TxTransfers   uint64 `protobuf:"varint,8,opt,name=tx_transfers,proto3" json:"tx_transfers,omitempty"`
	TxArmedBytes  uint64 `protobuf:"varint,9,opt,name=tx_armed_bytes,proto3" json:"tx_armed_bytes,omitempty"`
	TxRefused     uint64 `protobuf:"varint,10,opt,name=tx_refused,proto3" json:"tx_refused,omitempty"`
	TxCompletions uint64 `protobuf:"varint,11,opt,name=tx_completions,proto3" json:"tx_completions,omitempty"`
	TxPending     uint32 `protobuf:"varint,12,opt,name=tx_pending,proto3" json:"tx_pending,omitempty"`
	RxBytes       uint64 `protobuf:"varint,13,opt,name=rx_bytes,proto3" json:"rx_bytes,omitempty"`
	RxLines       uint64 `protobuf:"varint,14,opt,name=rx_lines,proto3" json:"rx_lines,omitempty"`
	RxBuffered    uint32 `protobuf:"varint,15,opt,name=rx_buffered,proto3" json:"rx_buffered,omitempty"`
	Echoed        uint64 `protobuf:"varint,16,opt,name=echoed,proto3" json:"echoed,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Snapshot) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Snapshot) Reset() { *m = Snapshot{} }

// String implements proto.Message.
func (m *Snapshot) String() string { return proto.CompactTextString(m) }

// FromStats converts transport stats.
func FromStats(id string, ts int64, s dmaio.Stats) *Snapshot {
	return &Snapshot{
		DeviceID:      id,
		Timestamp:     ts,
		Capacity:      uint32(s.Capacity),
		Bound:         s.Bound,
		Echo:          s.Echo,
		TxAccepted:    s.TxAccepted,
		TxOverruns:    s.TxOverruns,
		TxTransfers:   s.TxTransfers,
		TxArmedBytes:  s.TxArmedBytes,
		TxRefused:     s.TxRefused,
		TxCompletions: s.TxCompletions,
		TxPending:     uint32(s.TxPending),
		RxBytes:       s.RxBytes,
		RxLines:       s.RxLines,
		RxBuffered:    uint32(s.RxBuffered),
		Echoed:        s.Echoed,
	}
}

// Encode serializes the snapshot.
func (m *Snapshot) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Decode parses an encoded snapshot.
func Decode(data []byte) (*Snapshot, error) {
	m := &Snapshot{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
