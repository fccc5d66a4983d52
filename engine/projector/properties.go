package projector

import (
	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
)

func (p *projectorImpl) Get(prop property.Property) (float32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch prop {
	case property.PositionX, property.PositionY, property.PositionZ:
		return p.position[prop-property.PositionX], true
	case property.TargetX, property.TargetY, property.TargetZ:
		return p.target[prop-property.TargetX], true
	case property.Active:
		return property.Float(p.active), true
	case property.Intensity:
		return p.intensity, true
	case property.ThrowRatio:
		return p.throwRatio, true
	case property.LensShiftH:
		return p.shiftH, true
	case property.LensShiftV:
		return p.shiftV, true
	case property.KeystoneV:
		return p.keystoneV, true
	case property.KeystoneH:
		return p.keystoneH, true
	case property.SoftEdgeL:
		return p.softEdge.Left, true
	case property.SoftEdgeR:
		return p.softEdge.Right, true
	case property.SoftEdgeT:
		return p.softEdge.Top, true
	case property.SoftEdgeB:
		return p.softEdge.Bottom, true
	case property.SoftEdgeGamma:
		return p.softEdge.Gamma, true
	}
	if c, axis, ok := cornerOf(prop, property.KeystoneTLX); ok {
		return cornerValue(p.keystoneCorners, c)[axis], true
	}
	if c, axis, ok := cornerOf(prop, property.CornerPinTLX); ok {
		return cornerValue(p.cornerPin, c)[axis], true
	}
	return 0, false
}

func (p *projectorImpl) Set(prop property.Property, v float32) bool {
	switch prop {
	case property.PositionX, property.PositionY, property.PositionZ:
		pos := p.Position()
		pos[prop-property.PositionX] = v
		p.SetPosition(pos)
	case property.TargetX, property.TargetY, property.TargetZ:
		t := p.Target()
		t[prop-property.TargetX] = v
		p.SetTarget(t)
	case property.Active:
		p.SetActive(property.Bool(v))
	case property.Intensity:
		p.SetIntensity(v)
	case property.ThrowRatio:
		p.SetThrowRatio(v)
	case property.LensShiftH:
		_, sv := p.LensShift()
		p.SetLensShift(v, sv)
	case property.LensShiftV:
		sh, _ := p.LensShift()
		p.SetLensShift(sh, v)
	case property.KeystoneV:
		_, kh := p.Keystone()
		p.SetKeystone(v, kh)
	case property.KeystoneH:
		kv, _ := p.Keystone()
		p.SetKeystone(kv, v)
	case property.SoftEdgeL, property.SoftEdgeR, property.SoftEdgeT, property.SoftEdgeB:
		se := p.SoftEdge()
		margins := [4]float32{se.Left, se.Right, se.Top, se.Bottom}
		margins[prop-property.SoftEdgeL] = v
		p.SetSoftEdge(margins[0], margins[1], margins[2], margins[3])
	case property.SoftEdgeGamma:
		p.SetSoftEdgeGamma(v)
	default:
		if c, axis, ok := cornerOf(prop, property.KeystoneTLX); ok {
			cur := cornerValue(p.KeystoneCorners(), c)
			cur[axis] = v
			p.SetKeystoneCorner(c, cur[0], cur[1])
			return true
		}
		if c, axis, ok := cornerOf(prop, property.CornerPinTLX); ok {
			cur := cornerValue(p.CornerPin(), c)
			cur[axis] = v
			p.SetCornerPin(c, cur[0], cur[1])
			return true
		}
		return false
	}
	return true
}

// cornerOf decodes one of the eight consecutive corner properties starting at base
// (TLX, TLY, TRX, TRY, BLX, BLY, BRX, BRY).
func cornerOf(prop, base property.Property) (Corner, int, bool) {
	off := int(prop - base)
	if off < 0 || off >= 8 {
		return 0, 0, false
	}
	return Corner(off / 2), off % 2, true
}

func cornerValue(c common.Corners, corner Corner) common.Vec2 {
	switch corner {
	case CornerTR:
		return c.TR
	case CornerBL:
		return c.BL
	case CornerBR:
		return c.BR
	}
	return c.TL
}
