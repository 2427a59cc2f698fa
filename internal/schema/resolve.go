// internal/schema/resolve.go
package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/canbridge/internal/codec"
)

// Resolution errors. All of them are static mismatches between the bridge
// configuration and the network schema; they are reported once at startup.
var (
	ErrNodeNotFound      = errors.New("schema: node not found")
	ErrStreamNotFound    = errors.New("schema: stream not found")
	ErrMessageNotFound   = errors.New("schema: message not found")
	ErrBusNotFound       = errors.New("schema: bus not found")
	ErrAttributeNotFound = errors.New("schema: attribute not found")
	ErrInvalidMessage    = errors.New("schema: invalid message")
)

// TypeMismatchError reports an attribute whose type cannot be encoded as a
// fixed-point decimal.
type TypeMismatchError struct {
	Message   string
	Attribute string
	Got       string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("schema: attribute %q of message %q has type %q, expecting %q",
		e.Attribute, e.Message, e.Got, TypeDecimal)
}

// Signal is one resolved attribute.
type Signal struct {
	Name       string
	Descriptor codec.Descriptor
}

// Binding is everything the transmitter needs about one outbound stream.
type Binding struct {
	Node        string
	Stream      string
	Message     string
	Bus         string
	ID          uint32
	Extended    bool
	DLC         uint8
	MinInterval time.Duration
	Signals     []Signal // in the requested order
}

// Resolve looks up node -> tx stream -> message -> bus and resolves the named
// attributes to fixed-point descriptors.
//
// Bit positions follow declaration order: an attribute without an explicit
// position starts right after the previous attribute of the encoding.
func (n *Network) Resolve(node, stream string, attributes ...string) (Binding, error) {
	nd, ok := n.node(node)
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q (known: %v)", ErrNodeNotFound, node, n.NodeNames())
	}
	st, ok := nd.stream(stream)
	if !ok {
		return Binding{}, fmt.Errorf("%w: node %q has no tx_stream %q", ErrStreamNotFound, node, stream)
	}
	msg, ok := n.message(st.Message)
	if !ok {
		return Binding{}, fmt.Errorf("%w: stream %q references %q", ErrMessageNotFound, stream, st.Message)
	}
	if _, ok := n.bus(msg.Bus); !ok {
		return Binding{}, fmt.Errorf("%w: message %q is on bus %q", ErrBusNotFound, msg.Name, msg.Bus)
	}
	if err := validateMessage(msg); err != nil {
		return Binding{}, err
	}

	positions := layout(msg.Attributes)

	b := Binding{
		Node:        nd.Name,
		Stream:      st.Name,
		Message:     msg.Name,
		Bus:         msg.Bus,
		ID:          msg.ID,
		Extended:    msg.Extended,
		DLC:         msg.DLC,
		MinInterval: time.Duration(msg.MinIntervalMs) * time.Millisecond,
	}

	for _, name := range attributes {
		idx := -1
		for i := range msg.Attributes {
			if msg.Attributes[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Binding{}, fmt.Errorf("%w: stream %q has no mapping for %q", ErrAttributeNotFound, stream, name)
		}

		att := msg.Attributes[idx]
		if att.Type != TypeDecimal {
			return Binding{}, &TypeMismatchError{Message: msg.Name, Attribute: att.Name, Got: att.Type}
		}

		d := codec.Descriptor{
			BitWidth:    att.Size,
			Offset:      att.Offset,
			Scale:       att.Scale,
			BitPosition: positions[idx],
		}
		if err := d.Validate(); err != nil {
			return Binding{}, fmt.Errorf("schema: attribute %q of message %q: %w", att.Name, msg.Name, err)
		}

		b.Signals = append(b.Signals, Signal{Name: att.Name, Descriptor: d})
	}

	return b, nil
}

// layout computes the start bit of every attribute.
func layout(atts []Attribute) []uint32 {
	out := make([]uint32, len(atts))
	var next uint32
	for i, a := range atts {
		pos := next
		if a.Position != nil {
			pos = *a.Position
		}
		out[i] = pos
		next = pos + uint32(a.Size)
	}
	return out
}

func validateMessage(m *Message) error {
	if m.DLC > 8 {
		return fmt.Errorf("%w: message %q dlc %d exceeds 8", ErrInvalidMessage, m.Name, m.DLC)
	}
	maxID := uint32(0x7FF)
	if m.Extended {
		maxID = 0x1FFFFFFF
	}
	if m.ID > maxID {
		return fmt.Errorf("%w: message %q id 0x%X does not fit the identifier width", ErrInvalidMessage, m.Name, m.ID)
	}
	if m.MinIntervalMs < 0 {
		return fmt.Errorf("%w: message %q min_interval_ms must be >= 0", ErrInvalidMessage, m.Name)
	}
	return nil
}
