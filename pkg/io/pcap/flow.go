package pcap

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/hed1ad/nidsguard/pkg/dataset"
)

// Columns are the per-flow fields produced by the aggregator, named after the UNSW-NB15
// flow features so a model fitted on that data can classify captured traffic.
var Columns = []string{
	"proto", "service", "state",
	"sport", "dsport", "dur",
	"sbytes", "dbytes", "sttl", "dttl",
	"Spkts", "Dpkts", "smeansz", "dmeansz",
}

// services maps well-known server ports to UNSW-NB15 service names.
var services = map[uint16]string{
	20:   "ftp-data",
	21:   "ftp",
	22:   "ssh",
	25:   "smtp",
	53:   "dns",
	67:   "dhcp",
	80:   "http",
	110:  "pop3",
	161:  "snmp",
	194:  "irc",
	443:  "ssl",
	1812: "radius",
}

type endpoint struct {
	addr string
	port uint16
}

type flowKey struct {
	proto string
	a, b  endpoint
}

func newFlowKey(proto string, src, dst endpoint) flowKey {
	if dst.addr < src.addr || (dst.addr == src.addr && dst.port < src.port) {
		src, dst = dst, src
	}
	return flowKey{proto: proto, a: src, b: dst}
}

// flow accumulates both directions of a conversation. The source is the endpoint that sent
// the first packet.
type flow struct {
	proto      string
	src, dst   endpoint
	first      time.Time
	last       time.Time
	sbytes     int
	dbytes     int
	spkts      int
	dpkts      int
	sttl, dttl uint8

	syn, synAck, fin, rst bool
}

func (f *flow) add(fromSrc bool, size int, ttl uint8, ts time.Time, tcp *layers.TCP) {
	if ts.Before(f.first) || f.first.IsZero() {
		f.first = ts
	}
	if ts.After(f.last) {
		f.last = ts
	}

	if fromSrc {
		f.sbytes += size
		if f.spkts == 0 {
			f.sttl = ttl
		}
		f.spkts++
	} else {
		f.dbytes += size
		if f.dpkts == 0 {
			f.dttl = ttl
		}
		f.dpkts++
	}

	if tcp != nil {
		f.syn = f.syn || (tcp.SYN && !tcp.ACK)
		f.synAck = f.synAck || (tcp.SYN && tcp.ACK)
		f.fin = f.fin || tcp.FIN
		f.rst = f.rst || tcp.RST
	}
}

// state follows the UNSW-NB15 (Argus) state names.
func (f *flow) state() string {
	if f.proto == "tcp" {
		switch {
		case f.rst:
			return "RST"
		case f.fin:
			return "FIN"
		case f.dpkts > 0 && (f.synAck || !f.syn):
			return "CON"
		case f.syn:
			return "REQ"
		}
		return "INT"
	}
	if f.dpkts > 0 {
		return "CON"
	}
	return "INT"
}

func (f *flow) service() string {
	if s, ok := services[f.dst.port]; ok {
		return s
	}
	if s, ok := services[f.src.port]; ok {
		return s
	}
	return "-"
}

func (f *flow) record() []string {
	meanSize := func(bytes, pkts int) string {
		if pkts == 0 {
			return "0"
		}
		return strconv.Itoa(bytes / pkts)
	}
	return []string{
		f.proto,
		f.service(),
		f.state(),
		strconv.Itoa(int(f.src.port)),
		strconv.Itoa(int(f.dst.port)),
		strconv.FormatFloat(f.last.Sub(f.first).Seconds(), 'f', -1, 64),
		strconv.Itoa(f.sbytes),
		strconv.Itoa(f.dbytes),
		strconv.Itoa(int(f.sttl)),
		strconv.Itoa(int(f.dttl)),
		strconv.Itoa(f.spkts),
		strconv.Itoa(f.dpkts),
		meanSize(f.sbytes, f.spkts),
		meanSize(f.dbytes, f.dpkts),
	}
}

func (f *flow) String() string {
	return fmt.Sprintf("%s %s > %s", f.proto,
		net.JoinHostPort(f.src.addr, strconv.Itoa(int(f.src.port))),
		net.JoinHostPort(f.dst.addr, strconv.Itoa(int(f.dst.port))))
}

// FlowAggregator groups IP packets into bidirectional flows keyed by protocol and endpoint
// pair. It is not safe for concurrent use.
type FlowAggregator struct {
	flows   map[flowKey]*flow
	order   []flowKey
	ignored int
}

// NewFlowAggregator creates an empty aggregator.
func NewFlowAggregator() *FlowAggregator {
	return &FlowAggregator{flows: make(map[flowKey]*flow)}
}

// Add folds one packet into its flow. Packets without an IPv4 or IPv6 layer are counted and
// ignored. It reports whether the packet was used.
func (a *FlowAggregator) Add(packet gopacket.Packet) bool {
	var (
		srcAddr, dstAddr string
		ttl              uint8
		size             int
	)
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		srcAddr, dstAddr, ttl, size = ip.SrcIP.String(), ip.DstIP.String(), ip.TTL, int(ip.Length)
	case *layers.IPv6:
		srcAddr, dstAddr, ttl, size = ip.SrcIP.String(), ip.DstIP.String(), ip.HopLimit, int(ip.Length)+40
	default:
		a.ignored++
		return false
	}

	src := endpoint{addr: srcAddr}
	dst := endpoint{addr: dstAddr}
	var (
		proto string
		tcp   *layers.TCP
	)
	switch l := packet.TransportLayer().(type) {
	case *layers.TCP:
		proto, tcp = "tcp", l
		src.port, dst.port = uint16(l.SrcPort), uint16(l.DstPort)
	case *layers.UDP:
		proto = "udp"
		src.port, dst.port = uint16(l.SrcPort), uint16(l.DstPort)
	default:
		switch {
		case packet.Layer(layers.LayerTypeICMPv4) != nil, packet.Layer(layers.LayerTypeICMPv6) != nil:
			proto = "icmp"
		default:
			proto = "ip"
		}
	}

	var ts time.Time
	if md := packet.Metadata(); md != nil {
		ts = md.Timestamp
	}

	key := newFlowKey(proto, src, dst)
	f, ok := a.flows[key]
	if !ok {
		f = &flow{proto: proto, src: src, dst: dst}
		a.flows[key] = f
		a.order = append(a.order, key)
	}
	f.add(f.src == src, size, ttl, ts, tcp)
	return true
}

// Len returns the number of flows seen so far.
func (a *FlowAggregator) Len() int { return len(a.flows) }

// Ignored returns the number of packets that carried no IP layer.
func (a *FlowAggregator) Ignored() int { return a.ignored }

// Table returns one row per flow with the Columns fields, ordered by first packet time and
// then by arrival.
func (a *FlowAggregator) Table() *dataset.Table {
	t := dataset.MustTable(Columns...)
	for _, f := range a.sorted() {
		// Width always matches Columns.
		_ = t.Append(f.record()...)
	}
	return t
}

// Flows describes each row of Table as "proto src:port > dst:port".
func (a *FlowAggregator) Flows() []string {
	sorted := a.sorted()
	out := make([]string, len(sorted))
	for i, f := range sorted {
		out[i] = f.String()
	}
	return out
}

func (a *FlowAggregator) sorted() []*flow {
	out := make([]*flow, len(a.order))
	for i, k := range a.order {
		out[i] = a.flows[k]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].first.Before(out[j].first)
	})
	return out
}
