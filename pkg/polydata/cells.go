package polydata

// Primitive identifies one of the four connectivity lists of a mesh.
type Primitive int

const (
	Verts Primitive = iota
	Lines
	Polys
	Strips
)

// NumPrimitives is the number of connectivity lists a mesh carries.
const NumPrimitives = 4

var primitiveNames = [NumPrimitives]string{"verts", "lines", "polys", "strips"}

func (p Primitive) String() string {
	if p < 0 || int(p) >= NumPrimitives {
		return "unknown"
	}
	return primitiveNames[p]
}

// CellArray is a list of variable-length cells stored as a flat
// connectivity slice plus per-cell start offsets.
// A nil *CellArray behaves as an empty list.
type CellArray struct {
	offsets      []int // len = cells+1 once the first cell is inserted
	connectivity []uint32
}

// NewCellArray creates a cell array from explicit cells.
func NewCellArray(cells ...[]uint32) *CellArray {
	ca := &CellArray{}
	for _, c := range cells {
		ca.InsertNextCell(c...)
	}
	return ca
}

// InsertNextCell appends one cell.
func (ca *CellArray) InsertNextCell(ids ...uint32) {
	if len(ca.offsets) == 0 {
		ca.offsets = append(ca.offsets, 0)
	}
	ca.connectivity = append(ca.connectivity, ids...)
	ca.offsets = append(ca.offsets, len(ca.connectivity))
}

// Len returns the number of cells.
func (ca *CellArray) Len() int {
	if ca == nil || len(ca.offsets) == 0 {
		return 0
	}
	return len(ca.offsets) - 1
}

// Cell returns the point ids of cell i. The slice aliases internal storage.
func (ca *CellArray) Cell(i int) []uint32 {
	return ca.connectivity[ca.offsets[i]:ca.offsets[i+1]]
}

// ConnectivitySize returns the total number of point references.
func (ca *CellArray) ConnectivitySize() int {
	if ca == nil {
		return 0
	}
	return len(ca.connectivity)
}

// Each calls fn for every cell in traversal order.
func (ca *CellArray) Each(fn func(cell int, ids []uint32)) {
	for i := 0; i < ca.Len(); i++ {
		fn(i, ca.Cell(i))
	}
}
