package mesh

import (
	"fmt"

	"github.com/pradeep-pyro/triangle"

	"github.com/notargets/gomcl/utils"
)

type GeometryType uint8

const (
	Segment GeometryType = iota
	Triangle
)

var geometry_names = []string{
	"Segment",
	"Triangle",
}

func (gt GeometryType) Print() string { return geometry_names[gt] }

func (gt GeometryType) Dim() int {
	switch gt {
	case Segment:
		return 1
	case Triangle:
		return 2
	}
	panic(fmt.Errorf("unsupported geometry type: %d", gt))
}

func (gt GeometryType) NumVerts() int { return gt.Dim() + 1 }
func (gt GeometryType) NumFaces() int { return gt.Dim() + 1 }

// RefVolume is the measure of the reference element: the unit segment
// [0,1] or the unit right triangle.
func (gt GeometryType) RefVolume() float64 {
	switch gt {
	case Segment:
		return 1.
	case Triangle:
		return 0.5
	}
	panic(fmt.Errorf("unsupported geometry type: %d", gt))
}

// FaceVerts lists the local vertex indices of each local face, ordered so
// that the outward normal convention is consistent across elements.
func (gt GeometryType) FaceVerts() [][]int {
	switch gt {
	case Segment:
		return [][]int{{0}, {1}}
	case Triangle:
		return [][]int{{0, 1}, {1, 2}, {2, 0}}
	}
	panic(fmt.Errorf("unsupported geometry type: %d", gt))
}

type BCTag uint8

const (
	BC_FarField BCTag = iota
	BC_Out
	BC_Interface
)

var bc_names = []string{
	"Far Field",
	"Outflow Far Field",
	"Partition Interface",
}

func (t BCTag) Print() string { return bc_names[t] }

type BoundaryFace struct {
	Elem, LocalFace int
	Tag             BCTag
}

type Mesh struct {
	GType    GeometryType
	K        int // Number of elements
	NVerts   int
	VX, VY   utils.Vector // Vertex coordinates, VY zero-length for 1D
	EToV     [][]int      // Element to vertex map, K x NumVerts
	BdrFaces []BoundaryFace
}

// NewMesh1D builds a uniform mesh of K segments spanning [xmin, xmax].
func NewMesh1D(xmin, xmax float64, K int) (msh *Mesh) {
	var (
		VX   = utils.NewVector(K + 1)
		EToV = make([][]int, K)
	)
	for i := 0; i < K+1; i++ {
		VX.Set(i, (xmax-xmin)*float64(i)/float64(K)+xmin)
	}
	for k := 0; k < K; k++ {
		EToV[k] = []int{k, k + 1}
	}
	msh = &Mesh{
		GType:  Segment,
		K:      K,
		NVerts: K + 1,
		VX:     VX,
		EToV:   EToV,
	}
	msh.buildBoundaryFaces()
	return
}

// NewMesh2D triangulates a point cloud with Delaunay and orients every
// triangle counter-clockwise so that element Jacobians are positive.
func NewMesh2D(points [][2]float64) (msh *Mesh) {
	var (
		faces  = triangle.Delaunay(points)
		nverts = len(points)
	)
	msh = &Mesh{
		GType:  Triangle,
		K:      len(faces),
		NVerts: nverts,
		VX:     utils.NewVector(nverts),
		VY:     utils.NewVector(nverts),
		EToV:   make([][]int, len(faces)),
	}
	for i, pt := range points {
		msh.VX.Set(i, pt[0])
		msh.VY.Set(i, pt[1])
	}
	for k, f := range faces {
		tri := []int{int(f[0]), int(f[1]), int(f[2])}
		if msh.signedArea(tri) < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}
		msh.EToV[k] = tri
	}
	msh.buildBoundaryFaces()
	return
}

// NewMesh2DFromElements wraps an existing triangulation, reorienting
// elements counter-clockwise where needed.
func NewMesh2DFromElements(points [][2]float64, tris [][]int) (msh *Mesh) {
	var (
		nverts = len(points)
	)
	msh = &Mesh{
		GType:  Triangle,
		K:      len(tris),
		NVerts: nverts,
		VX:     utils.NewVector(nverts),
		VY:     utils.NewVector(nverts),
		EToV:   make([][]int, len(tris)),
	}
	for i, pt := range points {
		msh.VX.Set(i, pt[0])
		msh.VY.Set(i, pt[1])
	}
	for k, t := range tris {
		tri := []int{t[0], t[1], t[2]}
		if msh.signedArea(tri) < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}
		msh.EToV[k] = tri
	}
	msh.buildBoundaryFaces()
	return
}

func (msh *Mesh) signedArea(tri []int) (area float64) {
	var (
		x0, y0 = msh.VX.AtVec(tri[0]), msh.VY.AtVec(tri[0])
		x1, y1 = msh.VX.AtVec(tri[1]), msh.VY.AtVec(tri[1])
		x2, y2 = msh.VX.AtVec(tri[2]), msh.VY.AtVec(tri[2])
	)
	area = 0.5 * ((x1-x0)*(y2-y0) - (x2-x0)*(y1-y0))
	return
}

// VertCoords returns the physical coordinates of vertex v, padded with
// zero for the unused dimension in 1D.
func (msh *Mesh) VertCoords(v int) (x, y float64) {
	x = msh.VX.AtVec(v)
	if msh.GType.Dim() > 1 {
		y = msh.VY.AtVec(v)
	}
	return
}

// FaceKey identifies a face by its sorted global vertices.
type FaceKey [2]int

func (msh *Mesh) faceKey(e, lf int) (key FaceKey) {
	var (
		fv = msh.GType.FaceVerts()[lf]
	)
	key[0] = msh.EToV[e][fv[0]]
	key[1] = key[0] // point face in 1D
	if len(fv) == 2 {
		key[1] = msh.EToV[e][fv[1]]
	}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	return
}

func (msh *Mesh) buildBoundaryFaces() {
	var (
		count = make(map[FaceKey]int)
	)
	for e := 0; e < msh.K; e++ {
		for lf := 0; lf < msh.GType.NumFaces(); lf++ {
			count[msh.faceKey(e, lf)]++
		}
	}
	msh.BdrFaces = msh.BdrFaces[:0]
	for e := 0; e < msh.K; e++ {
		for lf := 0; lf < msh.GType.NumFaces(); lf++ {
			if count[msh.faceKey(e, lf)] == 1 {
				msh.BdrFaces = append(msh.BdrFaces, BoundaryFace{Elem: e, LocalFace: lf, Tag: BC_FarField})
			}
		}
	}
}

// TagBoundaryFaces reassigns boundary tags using the face midpoint.
func (msh *Mesh) TagBoundaryFaces(fn func(x, y float64) BCTag) {
	for i, bf := range msh.BdrFaces {
		var (
			fv   = msh.GType.FaceVerts()[bf.LocalFace]
			x, y float64
		)
		for _, lv := range fv {
			vx, vy := msh.VertCoords(msh.EToV[bf.Elem][lv])
			x += vx / float64(len(fv))
			y += vy / float64(len(fv))
		}
		msh.BdrFaces[i].Tag = fn(x, y)
	}
}

func (msh *Mesh) Print() (o string) {
	o = fmt.Sprintf("%s mesh: K = %d elements, %d vertices, %d boundary faces\n",
		msh.GType.Print(), msh.K, msh.NVerts, len(msh.BdrFaces))
	return
}
