// Package reader loads scene descriptors: JSON documents declaring the
// camera, the environment and the animated objects of a scene.
package reader

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/asset/field"
	"github.com/achilleasa/isoray/log"
	"github.com/achilleasa/isoray/scene"
	"github.com/achilleasa/isoray/types"
)

var logger = log.New("reader")

type cameraDef struct {
	Position [3]float32 `json:"position"`
	FOV      float32    `json:"fov"`
}

type environmentDef struct {
	PlaneY       float32 `json:"planeY"`
	TileSize     float32 `json:"tileSize"`
	Reflectivity float32 `json:"reflectivity"`
	Sky          string  `json:"sky"`
}

type ballDef struct {
	Radius   float32 `json:"radius"`
	Orbit    float32 `json:"orbit"`
	Speed    float32 `json:"speed"`
	Phase    float32 `json:"phase"`
	Bob      float32 `json:"bob"`
	BobSpeed float32 `json:"bobSpeed"`
}

type objectDef struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Color        [3]float32 `json:"color"`
	Reflectivity float32    `json:"reflectivity"`
	Position     [3]float32 `json:"position"`
	Spin         [3]float32 `json:"spin"`

	// box
	Size [3]float32 `json:"size"`

	// floor
	Extent float32    `json:"extent"`
	Cells  int        `json:"cells"`
	ColorB [3]float32 `json:"colorB"`

	// metaballs
	GridRes   int       `json:"gridRes"`
	Threshold float32   `json:"threshold"`
	Balls     []ballDef `json:"balls"`
}

type sceneDef struct {
	Camera      cameraDef      `json:"camera"`
	Environment environmentDef `json:"environment"`
	Objects     []objectDef    `json:"objects"`
}

// Read a scene descriptor file and assemble the world it declares. Relative
// sky texture paths resolve against the descriptor's directory.
func ReadFile(path string) (*scene.World, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: %v", err)
	}

	var def sceneDef
	if err = json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("reader: parsing %s: %v", path, err)
	}

	world, err := assemble(&def, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	logger.Infof("loaded scene %s (%d objects) in %d ms", path, len(world.Objects), time.Since(start).Nanoseconds()/1e6)
	return world, nil
}

func assemble(def *sceneDef, baseDir string) (*scene.World, error) {
	fov := def.Camera.FOV
	if fov == 0 {
		fov = 60
	}
	camera := scene.NewCamera(fov)
	camera.Position = vec3(def.Camera.Position)

	env := scene.NewGroundSky(def.Environment.PlaneY)
	if def.Environment.TileSize > 0 {
		env.TileSize = def.Environment.TileSize
	}
	env.Reflectivity = def.Environment.Reflectivity
	if def.Environment.Sky != "" {
		img, err := loadImage(filepath.Join(baseDir, def.Environment.Sky))
		if err != nil {
			return nil, err
		}
		env.Sky = img
	}

	world := scene.NewWorld(camera, env)

	for i, objDef := range def.Objects {
		obj, err := makeObject(i, &objDef)
		if err != nil {
			return nil, err
		}
		world.Add(obj)
	}

	return world, nil
}

func makeObject(index int, def *objectDef) (*scene.Object, error) {
	name := def.Name
	if name == "" {
		name = fmt.Sprintf("object-%d", index)
	}

	var source scene.MeshSource
	switch def.Type {
	case "box":
		source = scene.StaticMesh{Mesh: asset.NewBox(name, vec3(def.Size), vec3(def.Color), def.Reflectivity)}
	case "floor":
		cells := def.Cells
		if cells == 0 {
			cells = 8
		}
		source = scene.StaticMesh{Mesh: asset.NewFloorGrid(name, def.Extent, cells, vec3(def.Color), vec3(def.ColorB), def.Reflectivity)}
	case "metaballs":
		source = makeEmitter(name, def)
	default:
		return nil, fmt.Errorf("reader: object %q: unknown type %q", name, def.Type)
	}

	spin := vec3(def.Spin)
	position := vec3(def.Position)
	return &scene.Object{
		Name:   name,
		Source: source,
		Pose: func(t float64) scene.Pose {
			return scene.Pose{
				Position: position,
				Rotation: spin.Mul(float32(t)),
			}
		},
	}, nil
}

func makeEmitter(name string, def *objectDef) *field.Emitter {
	gridRes := def.GridRes
	if gridRes == 0 {
		gridRes = 40
	}
	threshold := def.Threshold
	if threshold == 0 {
		threshold = 1.0
	}

	emitter := &field.Emitter{
		Name:         name,
		GridRes:      gridRes,
		Threshold:    threshold,
		Color:        vec3(def.Color),
		Reflectivity: def.Reflectivity,
	}
	for _, b := range def.Balls {
		emitter.Paths = append(emitter.Paths, ballPath(b))
	}
	return emitter
}

// Each ball orbits the emitter origin in the XZ plane and bobs vertically.
func ballPath(def ballDef) field.BallPath {
	return field.BallPath{
		Radius: def.Radius,
		Center: func(t float64) types.Vec3 {
			angle := float64(def.Speed)*t + float64(def.Phase)
			return types.Vec3{
				def.Orbit * float32(math.Cos(angle)),
				def.Bob * float32(math.Sin(float64(def.BobSpeed)*t+float64(def.Phase))),
				def.Orbit * float32(math.Sin(angle)),
			}
		},
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: sky texture: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reader: sky texture %s: %v", path, err)
	}
	return img, nil
}

func vec3(v [3]float32) types.Vec3 {
	return types.Vec3{v[0], v[1], v[2]}
}

// Default assembles the built-in demo scene used when no descriptor file is
// given: a spinning box, a checker floor slab and a three-ball metaball blob.
func Default() *scene.World {
	def := &sceneDef{
		Camera: cameraDef{Position: [3]float32{0, 1.0, -6.0}, FOV: 55},
		Environment: environmentDef{
			PlaneY:       -1.5,
			TileSize:     1.25,
			Reflectivity: 0.25,
		},
		Objects: []objectDef{
			{
				Name:         "cube",
				Type:         "box",
				Size:         [3]float32{1.4, 1.4, 1.4},
				Color:        [3]float32{0.9, 0.35, 0.3},
				Reflectivity: 0.35,
				Position:     [3]float32{2.3, -0.2, 1.8},
				Spin:         [3]float32{0.4, 0.9, 0},
			},
			{
				Name:         "slab",
				Type:         "floor",
				Extent:       2.0,
				Cells:        8,
				Color:        [3]float32{0.9, 0.8, 0.55},
				ColorB:       [3]float32{0.4, 0.35, 0.3},
				Reflectivity: 0.1,
				Position:     [3]float32{-2.4, -1.0, 2.2},
			},
			{
				Name:         "blob",
				Type:         "metaballs",
				Color:        [3]float32{0.35, 0.65, 0.9},
				Reflectivity: 0.25,
				Position:     [3]float32{0, 0.3, 1.2},
				GridRes:      40,
				Threshold:    1.0,
				Balls: []ballDef{
					{Radius: 0.55, Orbit: 0.7, Speed: 1.1, Bob: 0.3, BobSpeed: 1.7},
					{Radius: 0.4, Orbit: 0.9, Speed: -0.8, Phase: 2.1, Bob: 0.45, BobSpeed: 2.3},
					{Radius: 0.3, Orbit: 0.5, Speed: 1.9, Phase: 4.2, Bob: 0.25, BobSpeed: 1.2},
				},
			},
		},
	}

	world, err := assemble(def, ".")
	if err != nil {
		// The built-in scene is static data; failing to assemble it is
		// a programming error.
		panic(err)
	}
	return world
}
