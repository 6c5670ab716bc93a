// Package proxysim provides an in-process proxy transport: a fake remote
// radio holding simulated peripherals, implementing the full remote operation
// set including connection slots, link drops, and notification delivery. The
// CLI uses it as its default transport and the client tests drive their
// scenarios through it.
package proxysim

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/srg/bleproxy/pkg/gatt"
	"github.com/srg/bleproxy/pkg/rpc"
)

// DescriptorLayout describes one descriptor of a simulated characteristic.
type DescriptorLayout struct {
	UUID   string `yaml:"uuid"`
	Handle uint16 `yaml:"handle"`
	Value  string `yaml:"value"`
}

// CharacteristicLayout describes one simulated characteristic. Properties are
// listed by name ("read", "notify", ...); Value is the initial payload in hex.
type CharacteristicLayout struct {
	UUID        string             `yaml:"uuid"`
	Handle      uint16             `yaml:"handle"`
	Properties  []string           `yaml:"properties"`
	Value       string             `yaml:"value"`
	Descriptors []DescriptorLayout `yaml:"descriptors"`
}

// ServiceLayout describes one simulated service.
type ServiceLayout struct {
	UUID            string                 `yaml:"uuid"`
	Handle          uint16                 `yaml:"handle"`
	Characteristics []CharacteristicLayout `yaml:"characteristics"`
}

// Peripheral is a complete simulated peer, loadable from YAML.
type Peripheral struct {
	Name     string          `yaml:"name"`
	Address  string          `yaml:"address"`
	Services []ServiceLayout `yaml:"services"`
}

// LoadPeripheral reads a peripheral layout from a YAML file.
func LoadPeripheral(path string) (*Peripheral, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout %q: %w", path, err)
	}
	return ParsePeripheral(data)
}

// ParsePeripheral parses a YAML peripheral layout and assigns sequential
// handles to every entry that does not declare one.
func ParsePeripheral(data []byte) (*Peripheral, error) {
	var p Peripheral
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if p.Address == "" {
		return nil, fmt.Errorf("layout is missing a peripheral address")
	}
	if _, err := gatt.MACToInt(p.Address); err != nil {
		return nil, err
	}
	p.assignHandles()
	return &p, nil
}

// assignHandles fills every zero handle with the next unused one, mirroring
// the sequential handle allocation of a real attribute table.
func (p *Peripheral) assignHandles() {
	next := uint16(1)
	claim := func(h uint16) uint16 {
		if h != 0 {
			if h >= next {
				next = h + 1
			}
			return h
		}
		h = next
		next++
		return h
	}
	for i := range p.Services {
		svc := &p.Services[i]
		svc.Handle = claim(svc.Handle)
		for j := range svc.Characteristics {
			ch := &svc.Characteristics[j]
			ch.Handle = claim(ch.Handle)
			for k := range ch.Descriptors {
				d := &ch.Descriptors[k]
				d.Handle = claim(d.Handle)
			}
		}
	}
}

func (c *CharacteristicLayout) properties() gatt.Property {
	var props gatt.Property
	for _, name := range c.Properties {
		props |= gatt.ParseProperty(name)
	}
	return props
}

// entries renders the layout as the raw service tree a remote enumeration
// returns.
func (p *Peripheral) entries() []rpc.ServiceEntry {
	entries := make([]rpc.ServiceEntry, 0, len(p.Services))
	for _, svc := range p.Services {
		se := rpc.ServiceEntry{
			UUID:   svc.UUID,
			Handle: svc.Handle,
		}
		for _, ch := range svc.Characteristics {
			ce := rpc.CharacteristicEntry{
				UUID:       ch.UUID,
				Handle:     ch.Handle,
				Properties: uint32(ch.properties()),
			}
			for _, d := range ch.Descriptors {
				ce.Descriptors = append(ce.Descriptors, rpc.DescriptorEntry{
					UUID:   d.UUID,
					Handle: d.Handle,
				})
			}
			se.Characteristics = append(se.Characteristics, ce)
		}
		entries = append(entries, se)
	}
	return entries
}

// values decodes the initial attribute values keyed by handle.
func (p *Peripheral) values() (map[uint16][]byte, error) {
	vals := make(map[uint16][]byte)
	for _, svc := range p.Services {
		for _, ch := range svc.Characteristics {
			v, err := decodeHexValue(ch.Value)
			if err != nil {
				return nil, fmt.Errorf("characteristic %s: %w", ch.UUID, err)
			}
			vals[ch.Handle] = v
			for _, d := range ch.Descriptors {
				v, err := decodeHexValue(d.Value)
				if err != nil {
					return nil, fmt.Errorf("descriptor %s: %w", d.UUID, err)
				}
				vals[d.Handle] = v
			}
		}
	}
	return vals, nil
}

func decodeHexValue(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return []byte{}, nil
	}
	v, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	return v, nil
}
