package generator

import (
	"errors"
	"fmt"
	"net"

	"Go2NetFixtures/internal/model"
)

// ErrConstruction is matched by every ConstructionError.
var ErrConstruction = errors.New("invalid generator input")

// ConstructionError reports a count or target a generator cannot build from.
type ConstructionError struct {
	Archetype string
	Reason    string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("archetype '%s': %s", e.Archetype, e.Reason)
}

func (e *ConstructionError) Unwrap() error { return ErrConstruction }

// BuildFunc produces the descriptors for one archetype. Inputs are already
// validated when it is called.
type BuildFunc func(src *Source, target net.IP, count int) []*model.PacketDescriptor

// Archetype is one named category of synthetic traffic.
type Archetype struct {
	Name        string
	FileName    string
	Description string
	// Factor is the number of descriptors emitted per requested packet.
	Factor float64
	Build  BuildFunc
}

// Generate validates the inputs and builds the archetype's sequence.
func (a Archetype) Generate(src *Source, target net.IP, count int) ([]*model.PacketDescriptor, error) {
	if count < 0 {
		return nil, &ConstructionError{Archetype: a.Name, Reason: fmt.Sprintf("negative count %d", count)}
	}
	dst, err := validTarget(target)
	if err != nil {
		return nil, &ConstructionError{Archetype: a.Name, Reason: err.Error()}
	}
	return a.Build(src, dst, count), nil
}

// Expected returns how many descriptors Generate emits for count.
func (a Archetype) Expected(count int) int {
	if a.Name == Legitimate {
		tcp, dns, icmp := legitimateMix(count)
		return tcp + dns + icmp
	}
	return int(a.Factor) * count
}

func validTarget(target net.IP) (net.IP, error) {
	if target == nil {
		return nil, errors.New("missing target address")
	}
	v4 := target.To4()
	if v4 == nil {
		return nil, fmt.Errorf("target %s is not an IPv4 address", target)
	}
	if v4.IsUnspecified() || v4.IsLoopback() || v4.IsMulticast() || v4.Equal(net.IPv4bcast) {
		return nil, fmt.Errorf("target %s is not a unicast address", target)
	}
	return v4, nil
}

// ParseTarget parses a dotted IPv4 string into a target address.
func ParseTarget(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, &ConstructionError{Archetype: "*", Reason: fmt.Sprintf("malformed target address '%s'", s)}
	}
	v4, err := validTarget(ip)
	if err != nil {
		return nil, &ConstructionError{Archetype: "*", Reason: err.Error()}
	}
	return v4, nil
}

// registry holds the archetypes keyed by name; order keeps registration order.
var (
	registry = make(map[string]Archetype)
	order    []string
)

// Register adds an archetype to the registry.
func Register(a Archetype) {
	if _, exists := registry[a.Name]; exists {
		panic(fmt.Sprintf("archetype '%s' already registered", a.Name))
	}
	registry[a.Name] = a
	order = append(order, a.Name)
}

// Lookup returns the archetype registered under name.
func Lookup(name string) (Archetype, bool) {
	a, ok := registry[name]
	return a, ok
}

// All returns every registered archetype in canonical order.
func All() []Archetype {
	out := make([]Archetype, 0, len(order))
	for _, name := range order {
		out = append(out, registry[name])
	}
	return out
}

// Names returns the registered archetype names in canonical order.
func Names() []string {
	return append([]string(nil), order...)
}

// Select resolves names to archetypes; an empty list selects all of them.
func Select(names []string) ([]Archetype, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]Archetype, 0, len(names))
	for _, name := range names {
		a, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown archetype: '%s'", name)
		}
		out = append(out, a)
	}
	return out, nil
}
