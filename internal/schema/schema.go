// internal/schema/schema.go
package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Network is the static description of the bus topology:
// buses, nodes with their outbound streams, and message layouts.
type Network struct {
	Buses    []Bus     `yaml:"buses"`
	Nodes    []Node    `yaml:"nodes"`
	Messages []Message `yaml:"messages"`
}

// ---- TOPOLOGY ----

type Bus struct {
	Name     string `yaml:"name"`
	Baudrate uint32 `yaml:"baudrate"`
}

type Node struct {
	Name      string   `yaml:"name"`
	TxStreams []Stream `yaml:"tx_streams"`
}

// Stream is a named outbound stream of a node, carried by one message.
type Stream struct {
	Name    string `yaml:"name"`
	Message string `yaml:"message"`
}

// ---- MESSAGE LAYOUT ----

type Message struct {
	Name          string      `yaml:"name"`
	Bus           string      `yaml:"bus"`
	ID            uint32      `yaml:"id"`
	Extended      bool        `yaml:"extended"`
	DLC           uint8       `yaml:"dlc"`
	MinIntervalMs int         `yaml:"min_interval_ms"`
	Attributes    []Attribute `yaml:"attributes"`
}

// Attribute is one encoded signal of a message.
// Position is optional; when absent the attribute starts right after the
// attributes declared before it.
type Attribute struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Size     uint8   `yaml:"size"`
	Offset   float64 `yaml:"offset"`
	Scale    float64 `yaml:"scale"`
	Position *uint32 `yaml:"position"`
}

// Attribute types. Only TypeDecimal resolves to a fixed-point descriptor.
const (
	TypeDecimal  = "decimal"
	TypeUnsigned = "unsigned"
	TypeSigned   = "signed"
	TypeEnum     = "enum"
)

// Load reads and parses a network schema file.
func Load(path string) (*Network, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	n, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return n, nil
}

// Parse decodes a network schema document. Unknown keys are rejected.
func Parse(b []byte) (*Network, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var n Network
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &n, nil
}

// NodeNames lists the declared nodes in order.
func (n *Network) NodeNames() []string {
	out := make([]string, 0, len(n.Nodes))
	for _, nd := range n.Nodes {
		out = append(out, nd.Name)
	}
	return out
}

func (n *Network) node(name string) (*Node, bool) {
	for i := range n.Nodes {
		if n.Nodes[i].Name == name {
			return &n.Nodes[i], true
		}
	}
	return nil, false
}

func (n *Network) message(name string) (*Message, bool) {
	for i := range n.Messages {
		if n.Messages[i].Name == name {
			return &n.Messages[i], true
		}
	}
	return nil, false
}

func (n *Network) bus(name string) (*Bus, bool) {
	for i := range n.Buses {
		if n.Buses[i].Name == name {
			return &n.Buses[i], true
		}
	}
	return nil, false
}

func (nd *Node) stream(name string) (*Stream, bool) {
	for i := range nd.TxStreams {
		if nd.TxStreams[i].Name == name {
			return &nd.TxStreams[i], true
		}
	}
	return nil, false
}
