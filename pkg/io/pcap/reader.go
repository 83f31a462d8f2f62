// Package pcap reads packet captures and aggregates them into flow records.
package pcap

import (
	"errors"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/rs/zerolog/log"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	nidsio "github.com/hed1ad/nidsguard/pkg/io"
)

var _ nidsio.TableReader = (*Reader)(nil)

// Reader reads packets from PCAP files or live interfaces and returns them as flows.
type Reader struct {
	handle     *pcap.Handle
	source     *gopacket.PacketSource
	aggregator *FlowAggregator
	limit      int
	isLive     bool
}

// NewFileReader creates a reader for PCAP files.
func NewFileReader(filename string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filename)
	if err != nil {
		return nil, err
	}
	return newReader(handle, false), nil
}

// NewLiveReader creates a reader for live packet capture. Read stops after limit packets.
func NewLiveReader(iface string, snaplen int32, promisc bool, timeout time.Duration, limit int) (*Reader, error) {
	handle, err := pcap.OpenLive(iface, snaplen, promisc, timeout)
	if err != nil {
		return nil, err
	}
	r := newReader(handle, true)
	r.limit = limit
	return r, nil
}

func newReader(handle *pcap.Handle, live bool) *Reader {
	return &Reader{
		handle:     handle,
		source:     gopacket.NewPacketSource(handle, handle.LinkType()),
		aggregator: NewFlowAggregator(),
		isLive:     live,
	}
}

// NewSourceReader reads from an already opened packet source, such as a pcapgo reader.
func NewSourceReader(source *gopacket.PacketSource) *Reader {
	return &Reader{source: source, aggregator: NewFlowAggregator()}
}

// Read consumes the capture and returns one row per flow.
func (r *Reader) Read() (*dataset.Table, error) {
	if r.source == nil {
		return nil, errors.New("reader not initialized")
	}
	if r.isLive && r.limit <= 0 {
		return nil, errors.New("live capture needs a packet limit")
	}

	packets := 0
	for packet := range r.source.Packets() {
		r.aggregator.Add(packet)
		packets++
		if r.limit > 0 && packets >= r.limit {
			break
		}
	}

	log.Debug().
		Int("packets", packets).
		Int("flows", r.aggregator.Len()).
		Int("ignored", r.aggregator.Ignored()).
		Msg("Capture aggregated")
	return r.aggregator.Table(), nil
}

// Flows describes the rows returned by Read.
func (r *Reader) Flows() []string {
	return r.aggregator.Flows()
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.handle != nil {
		r.handle.Close()
	}
	return nil
}
