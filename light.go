package arbor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// LightMode selects the light model.
type LightMode uint8

const (
	LightAmbient LightMode = iota
	LightDirectional
	LightOmni
	LightSpot
)

// String returns the lowercase name of the light mode.
func (m LightMode) String() string {
	switch m {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightOmni:
		return "omni"
	case LightSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// LightParams holds the parameters of a light node. Directional and spot
// lights shine along their local -Z axis.
type LightParams struct {
	Mode      LightMode
	Color     Color
	Intensity float32

	// Attenuation factors for omni and spot lights: 1 / (c + l*d + q*d*d).
	ConstantAttenuation  float32
	LinearAttenuation    float32
	QuadraticAttenuation float32

	// SpotAngle is the cone half-angle in degrees; SpotExponent shapes the
	// falloff inside the cone.
	SpotAngle    float32
	SpotExponent float32
}

// DefaultLightParams returns a white light of the given mode.
func DefaultLightParams(mode LightMode) LightParams {
	return LightParams{
		Mode:                mode,
		Color:               ColorWhite,
		Intensity:           1,
		ConstantAttenuation: 1,
		SpotAngle:           45,
	}
}

// NewLight creates a light node.
func (e *Engine) NewLight(name string, params LightParams) *Node {
	n := e.newNode(name, NodeTypeLight)
	n.SetLightParams(params)
	return n
}

func (n *Node) mustBeLight() {
	if n.Type != NodeTypeLight {
		panic(fmt.Sprintf("arbor: %s is not a light", n))
	}
}

// LightParams returns the light parameters.
func (n *Node) LightParams() LightParams {
	n.mustBeLight()
	return n.light
}

// SetLightParams replaces the light parameters. Panics on a spot angle
// outside [0, 90] or negative attenuation.
func (n *Node) SetLightParams(p LightParams) {
	n.mustBeLight()
	if p.SpotAngle < 0 || p.SpotAngle > 90 {
		panic("arbor: spot angle must lie in [0, 90]")
	}
	if p.ConstantAttenuation < 0 || p.LinearAttenuation < 0 || p.QuadraticAttenuation < 0 {
		panic("arbor: attenuation must not be negative")
	}
	n.light = p
}

// RegisteredLight is one light as seen from the camera of a render pass.
type RegisteredLight struct {
	Light     *Node
	Params    LightParams
	ToCamera  mgl32.Mat4
	Position  mgl32.Vec3 // camera space
	Direction mgl32.Vec3 // camera space, unit length
	Scope     uint32
}

// LightManager collects the lights registered during a render pass. The
// core only inserts; selecting lights per drawable is up to the backend.
type LightManager struct {
	lights []RegisteredLight
}

// Insert registers light with its light-to-camera transform.
func (lm *LightManager) Insert(light *Node, toCamera mgl32.Mat4, scope uint32) {
	pos := toCamera.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	dir := toCamera.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	lm.lights = append(lm.lights, RegisteredLight{
		Light:     light,
		Params:    light.light,
		ToCamera:  toCamera,
		Position:  pos.Vec3(),
		Direction: dir,
		Scope:     scope,
	})
}

// Clear removes every registration, keeping the backing storage.
func (lm *LightManager) Clear() {
	clear(lm.lights)
	lm.lights = lm.lights[:0]
}

// Lights returns the registrations. The returned slice MUST NOT be mutated.
func (lm *LightManager) Lights() []RegisteredLight {
	return lm.lights
}

// Len returns the number of registrations.
func (lm *LightManager) Len() int {
	return len(lm.lights)
}

// InScope returns the registrations whose scope overlaps scope.
func (lm *LightManager) InScope(scope uint32, dst []RegisteredLight) []RegisteredLight {
	for _, l := range lm.lights {
		if l.Scope&scope != 0 {
			dst = append(dst, l)
		}
	}
	return dst
}
