package socketio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Engine.IO v4 frame types. Every websocket text frame starts with one
// of these single-character prefixes.
const (
	eioOpen    byte = '0'
	eioClose   byte = '1'
	eioPing    byte = '2'
	eioPong    byte = '3'
	eioMessage byte = '4'
)

// Socket.IO v5 packet types, nested inside an Engine.IO message frame.
const (
	sioConnect      byte = '0'
	sioDisconnect   byte = '1'
	sioEvent        byte = '2'
	sioAck          byte = '3'
	sioConnectError byte = '4'
)

// handshake is the payload of the Engine.IO open frame.
type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// packet is a decoded Socket.IO packet on the default namespace.
type packet struct {
	Type  byte
	AckID int64 // -1 when the packet carries no ack id
	Data  json.RawMessage
}

// encodeEvent builds the wire form of an EVENT packet:
// `42<ackID>["event",args...]`. A negative ackID omits the id.
func encodeEvent(event string, ackID int64, args []any) ([]byte, error) {
	payload := make([]any, 0, len(args)+1)
	payload = append(payload, event)
	payload = append(payload, args...)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event %q: %w", event, err)
	}

	var buf bytes.Buffer
	buf.WriteByte(eioMessage)
	buf.WriteByte(sioEvent)
	if ackID >= 0 {
		buf.WriteString(strconv.FormatInt(ackID, 10))
	}
	buf.Write(data)
	return buf.Bytes(), nil
}

// decodePacket parses a Socket.IO packet out of an Engine.IO message
// frame, with the leading '4' already stripped off.
func decodePacket(frame []byte) (packet, error) {
	if len(frame) == 0 {
		return packet{}, errors.New("empty socket.io packet")
	}
	p := packet{Type: frame[0], AckID: -1}
	rest := frame[1:]

	// optional ack id digits sit between the type and the JSON payload
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 {
		id, err := strconv.ParseInt(string(rest[:i]), 10, 64)
		if err != nil {
			return packet{}, fmt.Errorf("bad ack id: %w", err)
		}
		p.AckID = id
	}
	if i < len(rest) {
		p.Data = json.RawMessage(rest[i:])
	}
	return p, nil
}

// splitEvent pulls the event name and its argument out of an EVENT
// payload `["name",arg]`. Only the first argument is kept, the upstream
// server pushes exactly one.
func splitEvent(data json.RawMessage) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, err
	}
	if len(parts) == 0 {
		return "", nil, errors.New("event packet with empty payload")
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, err
	}
	if len(parts) > 1 {
		return name, parts[1], nil
	}
	return name, nil, nil
}

// firstAckArg unwraps the callback argument list of an ACK payload.
func firstAckArg(data json.RawMessage) (json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return parts[0], nil
}
