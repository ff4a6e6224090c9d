package scene

import (
	"fmt"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
)

// GLTFDescription reads KHR_lights_punctual lights from a glTF document.
type GLTFDescription struct {
	doc *gltf.Document
}

func NewGLTFDescription(doc *gltf.Document) *GLTFDescription {
	return &GLTFDescription{doc: doc}
}

func OpenGLTF(path string) (*GLTFDescription, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return NewGLTFDescription(doc), nil
}

// LightDefinitions returns one definition per light node, walking the default scene
// depth first. Lights that no node references follow in declaration order,
// pointing down -Z. The first MaxShadowCasters lights cast shadows.
func (g *GLTFDescription) LightDefinitions() ([]LightDefinition, error) {
	if g == nil || g.doc == nil {
		return nil, ErrNilDescription
	}
	lights, err := documentLights(g.doc)
	if err != nil {
		return nil, err
	}
	if len(lights) == 0 {
		return nil, nil
	}

	w := &lightWalker{
		doc:     g.doc,
		lights:  lights,
		used:    make([]bool, len(lights)),
		visited: make([]bool, len(g.doc.Nodes)),
	}
	for _, root := range rootNodes(g.doc) {
		if err := w.walk(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	for i, l := range lights {
		if w.used[i] || l == nil {
			continue
		}
		w.defs = append(w.defs, definitionFor(l, "", mgl32.Ident4()))
	}

	for i := range w.defs {
		w.defs[i].CastShadow = i < core.MaxShadowCasters
	}
	return w.defs, nil
}

type lightWalker struct {
	doc     *gltf.Document
	lights  lightspunctual.Lights
	used    []bool
	visited []bool
	defs    []LightDefinition
}

func (w *lightWalker) walk(idx int, parent mgl32.Mat4) error {
	if idx < 0 || idx >= len(w.doc.Nodes) || w.visited[idx] {
		return nil
	}
	w.visited[idx] = true
	n := w.doc.Nodes[idx]
	if n == nil {
		return nil
	}
	world := parent.Mul4(localMatrix(n))

	if ext, ok := n.Extensions[lightspunctual.ExtensionName]; ok {
		li, err := lightIndex(ext)
		if err != nil {
			return fmt.Errorf("node %d: %w", idx, err)
		}
		if li >= len(w.lights) || w.lights[li] == nil {
			return fmt.Errorf("node %d references light %d of %d: %w", idx, li, len(w.lights), ErrUnsupportedFormat)
		}
		w.used[li] = true
		w.defs = append(w.defs, definitionFor(w.lights[li], n.Name, world))
	}

	for _, c := range n.Children {
		if err := w.walk(c, world); err != nil {
			return err
		}
	}
	return nil
}

func documentLights(doc *gltf.Document) (lightspunctual.Lights, error) {
	ext, ok := doc.Extensions[lightspunctual.ExtensionName]
	if !ok {
		return nil, nil
	}
	switch v := ext.(type) {
	case lightspunctual.Lights:
		return v, nil
	case *lightspunctual.Lights:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	default:
		return nil, fmt.Errorf("%s has type %T: %w", lightspunctual.ExtensionName, ext, ErrUnsupportedFormat)
	}
}

func lightIndex(ext any) (int, error) {
	switch v := ext.(type) {
	case lightspunctual.LightIndex:
		return int(v), nil
	case *lightspunctual.LightIndex:
		if v != nil {
			return int(*v), nil
		}
	}
	return 0, fmt.Errorf("light reference has type %T: %w", ext, ErrUnsupportedFormat)
}

// rootNodes returns the default scene's roots, or every parentless node when the
// document names no scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) && doc.Scenes[*doc.Scene] != nil {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 && doc.Scenes[0] != nil {
		return doc.Scenes[0].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

func localMatrix(n *gltf.Node) mgl32.Mat4 {
	m := n.MatrixOrDefault()
	var mat mgl32.Mat4
	for i := range m {
		mat[i] = float32(m[i])
	}
	if mat != mgl32.Ident4() {
		return mat
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault() // [x, y, z, w]
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}.Normalize()
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// definitionFor maps a punctual light placed by world. Directional and spot lights
// shine down their local -Z; a point light is seen from the origin.
func definitionFor(l *lightspunctual.Light, nodeName string, world mgl32.Mat4) LightDefinition {
	name := l.Name
	if name == "" {
		name = nodeName
	}

	var toLight mgl32.Vec3
	switch l.Type {
	case lightspunctual.TypePoint:
		toLight = world.Col(3).Vec3()
	default:
		toLight = world.Mat3().Mul3x1(mgl32.Vec3{0, 0, 1})
	}
	if toLight.Len() == 0 {
		toLight = mgl32.Vec3{0, 0, 1}
	}

	c := l.ColorOrDefault()
	color := mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}

	d := NewLightDefinition(name, toLight.Normalize(), float32(l.IntensityOrDefault()))
	d.Specular = 0.5
	d.DiffuseColor = color
	d.SpecularColor = color.Mul(0.5)
	return d
}
