package arbor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SpriteImage is a backend image with its size in texels.
type SpriteImage struct {
	Image         any
	Width, Height int
}

// Crop selects the rectangle of the sprite image that is drawn, in texels.
// A negative width or height mirrors the image on that axis.
type Crop struct {
	X, Y, Width, Height int
}

type spriteParams struct {
	appearance *Appearance
	image      SpriteImage
	crop       Crop
	scaled     bool
}

// NewSprite creates a sprite node. A scaled sprite is a unit quad centered on
// the node origin in the XY plane, transformed like any geometry. An
// unscaled sprite keeps the pixel size of its crop rectangle on screen and
// only its origin is transformed.
func (e *Engine) NewSprite(name string, scaled bool, img SpriteImage, a *Appearance) *Node {
	n := e.newNode(name, NodeTypeSprite)
	n.sprite = spriteParams{
		appearance: a,
		image:      img,
		crop:       Crop{Width: img.Width, Height: img.Height},
		scaled:     scaled,
	}
	return n
}

func (n *Node) mustBeSprite() {
	if n.Type != NodeTypeSprite {
		panic(fmt.Sprintf("arbor: %s is not a sprite", n))
	}
}

// IsScaled reports whether the sprite is a scaled sprite.
func (n *Node) IsScaled() bool {
	n.mustBeSprite()
	return n.sprite.scaled
}

// SpriteAppearance returns the sprite appearance, or nil.
func (n *Node) SpriteAppearance() *Appearance {
	n.mustBeSprite()
	return n.sprite.appearance
}

// SetSpriteAppearance sets the sprite appearance. A nil appearance hides the
// sprite.
func (n *Node) SetSpriteAppearance(a *Appearance) {
	n.mustBeSprite()
	n.sprite.appearance = a
}

// SpriteImage returns the sprite image.
func (n *Node) SpriteImage() SpriteImage {
	n.mustBeSprite()
	return n.sprite.image
}

// SetSpriteImage replaces the image and resets the crop to cover it.
func (n *Node) SetSpriteImage(img SpriteImage) {
	n.mustBeSprite()
	n.sprite.image = img
	n.sprite.crop = Crop{Width: img.Width, Height: img.Height}
}

// SetCrop sets the crop rectangle.
func (n *Node) SetCrop(c Crop) {
	n.mustBeSprite()
	n.sprite.crop = c
}

// Crop returns the crop rectangle.
func (n *Node) Crop() Crop {
	n.mustBeSprite()
	return n.sprite.crop
}

// spriteBounds returns the local bounds of a sprite: the unit quad for
// scaled sprites, the origin otherwise.
func (n *Node) spriteBounds() AABB {
	if !n.sprite.scaled {
		return AABB{}
	}
	return AABB{
		Min: mgl32.Vec3{-0.5, -0.5, 0},
		Max: mgl32.Vec3{0.5, 0.5, 0},
	}
}
