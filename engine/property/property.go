// Package property defines the closed set of animatable entity properties and the Target
// interface through which timelines and editors read and write them.
package property

import (
	"errors"
	"fmt"
)

// ErrUnknownProperty is returned by Parse for names outside the registry.
var ErrUnknownProperty = errors.New("property: unknown property")

// Property identifies one scalar animatable field.
type Property int

const (
	PositionX Property = iota
	PositionY
	PositionZ
	TargetX
	TargetY
	TargetZ
	ScaleX
	ScaleY
	ScaleZ
	Visible
	Active
	Intensity
	ThrowRatio
	LensShiftH
	LensShiftV
	KeystoneV
	KeystoneH
	KeystoneTLX
	KeystoneTLY
	KeystoneTRX
	KeystoneTRY
	KeystoneBLX
	KeystoneBLY
	KeystoneBRX
	KeystoneBRY
	CornerPinTLX
	CornerPinTLY
	CornerPinTRX
	CornerPinTRY
	CornerPinBLX
	CornerPinBLY
	CornerPinBRX
	CornerPinBRY
	SoftEdgeL
	SoftEdgeR
	SoftEdgeT
	SoftEdgeB
	SoftEdgeGamma

	count
)

var names = [count]string{
	PositionX:     "position.x",
	PositionY:     "position.y",
	PositionZ:     "position.z",
	TargetX:       "target.x",
	TargetY:       "target.y",
	TargetZ:       "target.z",
	ScaleX:        "scale.x",
	ScaleY:        "scale.y",
	ScaleZ:        "scale.z",
	Visible:       "visible",
	Active:        "active",
	Intensity:     "intensity",
	ThrowRatio:    "throw_ratio",
	LensShiftH:    "lens_shift_h",
	LensShiftV:    "lens_shift_v",
	KeystoneV:     "keystone_v",
	KeystoneH:     "keystone_h",
	KeystoneTLX:   "keystone_tl_x",
	KeystoneTLY:   "keystone_tl_y",
	KeystoneTRX:   "keystone_tr_x",
	KeystoneTRY:   "keystone_tr_y",
	KeystoneBLX:   "keystone_bl_x",
	KeystoneBLY:   "keystone_bl_y",
	KeystoneBRX:   "keystone_br_x",
	KeystoneBRY:   "keystone_br_y",
	CornerPinTLX:  "corner_pin_tl_x",
	CornerPinTLY:  "corner_pin_tl_y",
	CornerPinTRX:  "corner_pin_tr_x",
	CornerPinTRY:  "corner_pin_tr_y",
	CornerPinBLX:  "corner_pin_bl_x",
	CornerPinBLY:  "corner_pin_bl_y",
	CornerPinBRX:  "corner_pin_br_x",
	CornerPinBRY:  "corner_pin_br_y",
	SoftEdgeL:     "soft_edge_l",
	SoftEdgeR:     "soft_edge_r",
	SoftEdgeT:     "soft_edge_t",
	SoftEdgeB:     "soft_edge_b",
	SoftEdgeGamma: "soft_edge_gamma",
}

var byName = func() map[string]Property {
	m := make(map[string]Property, count)
	for p, n := range names {
		m[n] = Property(p)
	}
	return m
}()

// String returns the persisted name of the property.
func (p Property) String() string {
	if p < 0 || p >= count {
		return fmt.Sprintf("property(%d)", int(p))
	}
	return names[p]
}

// Valid reports whether p is a member of the registry.
func (p Property) Valid() bool {
	return p >= 0 && p < count
}

// MarshalText implements encoding.TextMarshaler so properties persist by name.
func (p Property) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProperty, int(p))
	}
	return []byte(names[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Property) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Parse maps a persisted property name back to its Property.
//
// Parameters:
//   - name: the persisted name, e.g. "throw_ratio" or "position.x"
//
// Returns:
//   - Property: the matching property
//   - error: ErrUnknownProperty when the name is not registered
func Parse(name string) (Property, error) {
	p, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return p, nil
}

// All returns every registered property in declaration order.
func All() []Property {
	out := make([]Property, count)
	for i := range out {
		out[i] = Property(i)
	}
	return out
}

// Bool converts a stored scalar to a boolean, treating values >= 0.5 as true.
func Bool(v float32) bool {
	return v >= 0.5
}

// Float converts a boolean to its stored scalar form.
func Float(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// Target is an entity whose properties can be read and written by identifier.
// Setters apply the same clamping as the entity's typed setters.
type Target interface {
	// ID returns the session-unique id of the entity.
	//
	// Returns:
	//   - uint64: the id
	ID() uint64

	// Get reads a property.
	//
	// Parameters:
	//   - p: the property to read
	//
	// Returns:
	//   - float32: the current value
	//   - bool: false when the entity does not expose p
	Get(p Property) (float32, bool)

	// Set writes a property through the entity's validating setter.
	//
	// Parameters:
	//   - p: the property to write
	//   - v: the requested value, clamped by the entity
	//
	// Returns:
	//   - bool: false when the entity does not expose p
	Set(p Property, v float32) bool
}
