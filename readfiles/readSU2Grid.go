package readfiles

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/notargets/gomcl/mesh"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle                     = 5
	ELType_Quadrilateral                = 9
	ELType_Tetrahedral                  = 10
	ELType_Hexahedral                   = 12
	ELType_Prism                        = 13
	ELType_Pyramid                      = 14
)

/*
	ReadSU2 reads a two dimensional triangular SU2 grid file and returns
	the mesh with boundary faces tagged from the file's marker sections.
	Marker labels map onto boundary conditions by name: "out*" labels tag
	outflow far field, "interface" tags partition interfaces, anything
	else is far field.
*/
func ReadSU2(filename string, verbose bool) (msh *mesh.Mesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		err = fmt.Errorf("unable to open file %s: %s", filename, err.Error())
		return
	}
	defer file.Close()
	reader := bufio.NewReader(file)

	dimensionality := readNumber(reader)
	if dimensionality != 2 {
		err = fmt.Errorf("unable to read %d dimensional grids, only 2D", dimensionality)
		return
	}
	tris := readElements(reader)
	points := readVertices(reader)
	bcEdges := readBCs(reader)
	msh = mesh.NewMesh2DFromElements(points, tris)
	tagFromMarkers(msh, bcEdges)
	if verbose {
		fmt.Printf("%s", msh.Print())
	}
	return
}

func tagForLabel(label string) (tag mesh.BCTag) {
	switch {
	case strings.HasPrefix(label, "out"):
		tag = mesh.BC_Out
	case label == "interface":
		tag = mesh.BC_Interface
	default:
		tag = mesh.BC_FarField
	}
	return
}

// tagFromMarkers matches each marker edge, keyed by its sorted vertex
// pair, against the mesh's boundary face inventory.
func tagFromMarkers(msh *mesh.Mesh, bcEdges map[string][][2]int) {
	var (
		tags   = make(map[mesh.FaceKey]mesh.BCTag)
		fverts = msh.GType.FaceVerts()
	)
	for label, edges := range bcEdges {
		for _, ed := range edges {
			key := mesh.FaceKey{ed[0], ed[1]}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			tags[key] = tagForLabel(strings.ToLower(label))
		}
	}
	for n, bf := range msh.BdrFaces {
		var (
			fv  = fverts[bf.LocalFace]
			key = mesh.FaceKey{msh.EToV[bf.Elem][fv[0]], msh.EToV[bf.Elem][fv[1]]}
		)
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if tag, found := tags[key]; found {
			msh.BdrFaces[n].Tag = tag
		}
	}
}

func readBCs(reader *bufio.Reader) (bcEdges map[string][][2]int) {
	var (
		nType  int
		v1, v2 int
		err    error
	)
	NBCs := readNumber(reader)
	bcEdges = make(map[string][][2]int, NBCs)
	for n := 0; n < NBCs; n++ {
		label := readLabel(reader)
		nEdges := readNumber(reader)
		for i := 0; i < nEdges; i++ {
			line := getLine(reader)
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				panic(err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				panic("BCs should only contain line elements in 2D")
			}
			bcEdges[label] = append(bcEdges[label], [2]int{v1, v2})
		}
	}
	return
}

func readVertices(reader *bufio.Reader) (points [][2]float64) {
	var (
		n    int
		x, y float64
		err  error
	)
	Nv := readNumber(reader)
	points = make([][2]float64, Nv)
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
			panic(err)
		}
		if n != 2 {
			panic("unable to read coordinates")
		}
		points[i] = [2]float64{x, y}
	}
	return
}

func readElements(reader *bufio.Reader) (tris [][]int) {
	var (
		n          int
		nType      int
		v1, v2, v3 int
		err        error
	)
	K := readNumber(reader)
	tris = make([][]int, K)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3); err != nil {
			panic(err)
		}
		if n != 4 {
			panic("unable to read vertices")
		}
		if SU2ElementType(nType) != ELType_Triangle {
			panic("unable to deal with non-triangular elements right now")
		}
		tris[k] = []int{v1, v2, v3}
	}
	return
}

func getToken(reader *bufio.Reader) (token string) {
	var (
		line string
		err  error
	)
	line = getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		panic(err)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		panic(err)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
		panic(err)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.Trim(getLine(reader), " ")
		ind := strings.Index(line, "%")
		if ind < 0 || ind != 0 {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string) {
	var (
		err error
	)
	if line, err = reader.ReadString('\n'); err != nil {
		if err.Error() != "EOF" {
			panic(err)
		}
	}
	line = strings.TrimRight(line, "\n")
	return
}
